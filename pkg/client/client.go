package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/eventdeck/eventdeck/internal/rest"
	"github.com/eventdeck/eventdeck/pkg/event"
	"github.com/eventdeck/eventdeck/pkg/favorite"
	"github.com/eventdeck/eventdeck/pkg/user"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var ErrNotSignedIn = errors.New("not signed in")

// APIError is a non-2xx answer of the server.
type APIError struct {
	Status  int
	Message string
	Details string
	Fields  []rest.FieldError
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.Status, e.Details)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to the eventdeck HTTP API on behalf of one session. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	base    *http.Client
	http    *http.Client
	session user.Session
}

// New returns a client without a session. httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		base:    httpClient,
		http:    httpClient,
	}
}

// WithSession returns a copy of the client authenticating every request with session.
func (c *Client) WithSession(session user.Session) *Client {
	cp := *c
	cp.session = session
	if session.Token == "" {
		cp.http = c.base
		return &cp
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
	cp.http = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: session.Token,
		TokenType:   "Bearer",
	}))
	return &cp
}

func (c *Client) Session() user.Session {
	return c.session
}

func (c *Client) SignUp(ctx context.Context, email, password, confirmation string) (user.Session, error) {
	var dto user.SessionDTO
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", user.SignUpRequest{
		Email:           email,
		Password:        password,
		ConfirmPassword: confirmation,
	}, &dto)
	if err != nil {
		return user.Session{}, err
	}
	return sessionFromDTO(dto), nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (user.Session, error) {
	var dto user.SessionDTO
	err := c.do(ctx, http.MethodPost, "/api/auth/signin", user.SignInRequest{Email: email, Password: password}, &dto)
	if err != nil {
		return user.Session{}, err
	}
	return sessionFromDTO(dto), nil
}

func (c *Client) SignOut(ctx context.Context) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/auth/signout", nil, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (user.User, error) {
	if err := c.requireSession(); err != nil {
		return user.User{}, err
	}
	var dto user.UserDTO
	if err := c.do(ctx, http.MethodGet, "/api/user/current", nil, &dto); err != nil {
		return user.User{}, err
	}
	return user.User{Uid: dto.Uid, Email: dto.Email, CreatedAt: dto.CreatedAt}, nil
}

func (c *Client) ListEvents(ctx context.Context) ([]event.Event, error) {
	return c.events(ctx, "/api/event")
}

func (c *Client) GetEvent(ctx context.Context, id string) (event.Event, error) {
	return c.event(ctx, http.MethodGet, "/api/event/"+url.PathEscape(id), nil)
}

func (c *Client) CreateEvent(ctx context.Context, fields event.Fields) (event.Event, error) {
	return c.event(ctx, http.MethodPost, "/api/event", event.FieldsToDTO(fields))
}

func (c *Client) UpdateEvent(ctx context.Context, id string, fields event.Fields) (event.Event, error) {
	return c.event(ctx, http.MethodPut, "/api/event/"+url.PathEscape(id), event.FieldsToDTO(fields))
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/event/"+url.PathEscape(id), nil, nil)
}

func (c *Client) FavoriteIds(ctx context.Context) ([]string, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var dto favorite.IdsDTO
	if err := c.do(ctx, http.MethodGet, "/api/favorite/ids", nil, &dto); err != nil {
		return nil, err
	}
	return dto.EventIds, nil
}

func (c *Client) ToggleFavorite(ctx context.Context, eventId string) (favorite.ToggleResult, error) {
	if err := c.requireSession(); err != nil {
		return favorite.ToggleResult{}, err
	}
	var dto favorite.ToggleResultDTO
	if err := c.do(ctx, http.MethodPut, "/api/favorite/"+url.PathEscape(eventId)+"/toggle", nil, &dto); err != nil {
		return favorite.ToggleResult{}, err
	}
	return favorite.ToggleResult{EventId: dto.EventId, Favorited: dto.Favorited, EventIds: dto.EventIds}, nil
}

func (c *Client) ListFavorites(ctx context.Context) ([]event.Event, error) {
	return c.events(ctx, "/api/favorite")
}

func (c *Client) RemoveFavorite(ctx context.Context, eventId string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/favorite/"+url.PathEscape(eventId), nil, nil)
}

// FavoritesCalendar downloads the iCalendar feed of favorited events. tz is an IANA zone name
// used for timed entries; empty means UTC.
func (c *Client) FavoritesCalendar(ctx context.Context, tz string) (string, error) {
	if err := c.requireSession(); err != nil {
		return "", err
	}
	path := "/api/favorite/calendar.ics"
	if tz != "" {
		path += "?tz=" + url.QueryEscape(tz)
	}
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read calendar: %w", err)
	}
	return string(body), nil
}

func (c *Client) events(ctx context.Context, path string) ([]event.Event, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var dtos []event.EventDTO
	if err := c.do(ctx, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}
	return event.FromDTOs(dtos), nil
}

func (c *Client) event(ctx context.Context, method, path string, body any) (event.Event, error) {
	if err := c.requireSession(); err != nil {
		return event.Event{}, err
	}
	var dto event.EventDTO
	if err := c.do(ctx, method, path, body, &dto); err != nil {
		return event.Event{}, err
	}
	return event.FromDTO(dto), nil
}

func (c *Client) requireSession() error {
	if c.session.Token == "" {
		return ErrNotSignedIn
	}
	return nil
}

// do sends body as JSON and decodes a successful answer into out, when out is not nil.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Errorf("Failed to decode response of %s %s: %v", method, path, err)
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// send returns the response of a successful request; the caller closes its body.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debugf("%s %s failed: %v", method, path, err)
		return nil, err
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body rest.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
		apiErr.Fields = body.Fields
	}
	return apiErr
}

func sessionFromDTO(dto user.SessionDTO) user.Session {
	return user.Session{
		Token:     dto.Token,
		UserId:    dto.UserId,
		Email:     dto.Email,
		ExpiresAt: dto.ExpiresAt,
	}
}
