package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/eventdeck/eventdeck/pkg/client"
	"github.com/eventdeck/eventdeck/pkg/screen"
	"github.com/eventdeck/eventdeck/pkg/user"
	"github.com/urfave/cli/v2"
)

const envKey = "env"

var errNotSignedIn = cli.Exit("not signed in, run `eventctl signin` first", 1)

// storedSession is the on-disk form of a session.
type storedSession struct {
	Server    string    `json:"server"`
	Token     string    `json:"token"`
	UserId    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type env struct {
	server      string
	sessionPath string
	in          *bufio.Reader
	out         io.Writer
}

func newEnv(server, sessionPath string, in io.Reader, out io.Writer) *env {
	return &env{server: server, sessionPath: sessionPath, in: bufio.NewReader(in), out: out}
}

func envOf(c *cli.Context) *env {
	return c.App.Metadata[envKey].(*env)
}

func defaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate the user config dir: %w", err)
	}
	return filepath.Join(dir, "eventdeck", "session.json"), nil
}

func (e *env) anonymous() *client.Client {
	return client.New(e.server, nil)
}

// signedIn returns a client bound to the stored session.
func (e *env) signedIn() (*client.Client, error) {
	session, ok, err := e.loadSession()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNotSignedIn
	}
	return e.anonymous().WithSession(session), nil
}

func (e *env) loadSession() (user.Session, bool, error) {
	data, err := os.ReadFile(e.sessionPath)
	if errors.Is(err, os.ErrNotExist) {
		return user.Session{}, false, nil
	} else if err != nil {
		return user.Session{}, false, fmt.Errorf("failed to read session: %w", err)
	}
	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return user.Session{}, false, fmt.Errorf("corrupt session file %s: %w", e.sessionPath, err)
	}
	if stored.Token == "" || stored.Server != e.server {
		return user.Session{}, false, nil
	}
	if !stored.ExpiresAt.IsZero() && time.Now().After(stored.ExpiresAt) {
		return user.Session{}, false, nil
	}
	return user.Session{Token: stored.Token, UserId: stored.UserId, Email: stored.Email, ExpiresAt: stored.ExpiresAt}, true, nil
}

func (e *env) saveSession(s user.Session) error {
	if err := os.MkdirAll(filepath.Dir(e.sessionPath), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	data, err := json.MarshalIndent(storedSession{
		Server:    e.server,
		Token:     s.Token,
		UserId:    s.UserId,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(e.sessionPath, data, 0o600)
}

func (e *env) forgetSession() error {
	if err := os.Remove(e.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// prompt prints label and reads one trimmed line. It returns io.EOF when input ends.
func (e *env) prompt(label string) (string, error) {
	fmt.Fprint(e.out, label)
	line, err := e.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// valueOrPrompt uses the flag when set and asks otherwise.
func (e *env) valueOrPrompt(c *cli.Context, flag, label string) (string, error) {
	if c.IsSet(flag) {
		return c.String(flag), nil
	}
	return e.prompt(label)
}

func (e *env) confirm(question string) bool {
	answer, err := e.prompt(question + " [y/N]: ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

type noticeBoard interface {
	Notice() (screen.Notice, bool)
	DismissNotice()
}

// flushNotice prints and dismisses the pending notice. It reports whether there was one.
func (e *env) flushNotice(board noticeBoard) bool {
	notice, ok := board.Notice()
	if !ok {
		return false
	}
	fmt.Fprintf(e.out, "! %s\n", notice.Message)
	board.DismissNotice()
	return true
}

func (e *env) printErrors(errs map[string]string) {
	for _, field := range slices.Sorted(maps.Keys(errs)) {
		msg := errs[field]
		if field == screen.FormErrorField {
			fmt.Fprintf(e.out, "  %s\n", msg)
			continue
		}
		fmt.Fprintf(e.out, "  %s: %s\n", field, msg)
	}
}
