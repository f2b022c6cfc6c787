package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/eventdeck/eventdeck/internal/config"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

var scopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/datastore",
	"https://www.googleapis.com/auth/firebase",
	"https://www.googleapis.com/auth/identitytoolkit",
	"https://www.googleapis.com/auth/userinfo.email",
}

// Backend is the process-wide handle to Firebase. Clients are created on first use; every later
// call returns the same clients, or the same initialization error.
type Backend struct {
	cfg config.Firebase

	once      sync.Once
	err       error
	app       *firebase.App
	firestore *firestore.Client
	auth      *auth.Client
	identity  *identitytoolkit.Service
}

func NewBackend(cfg config.Firebase) *Backend {
	return &Backend{cfg: cfg}
}

func (b *Backend) Firestore(ctx context.Context) (*firestore.Client, error) {
	if err := b.init(ctx); err != nil {
		return nil, err
	}
	return b.firestore, nil
}

func (b *Backend) Auth(ctx context.Context) (*auth.Client, error) {
	if err := b.init(ctx); err != nil {
		return nil, err
	}
	return b.auth, nil
}

// IdentityToolkit returns the REST client used for password sign-in and sign-up, which the Admin
// SDK does not offer.
func (b *Backend) IdentityToolkit(ctx context.Context) (*identitytoolkit.Service, error) {
	if err := b.init(ctx); err != nil {
		return nil, err
	}
	return b.identity, nil
}

func (b *Backend) Close() error {
	if b.firestore == nil {
		return nil
	}
	return b.firestore.Close()
}

func (b *Backend) init(ctx context.Context) error {
	b.once.Do(func() {
		b.err = b.connect(ctx)
		if b.err != nil {
			log.Errorf("failed to initialize firebase: %v", b.err)
		}
	})
	return b.err
}

func (b *Backend) connect(ctx context.Context) error {
	if b.cfg.ProjectId == "" {
		return errors.New("firebase project id is not configured")
	}
	if b.cfg.FirestoreEmulatorHost != "" {
		os.Setenv("FIRESTORE_EMULATOR_HOST", b.cfg.FirestoreEmulatorHost)
	}
	if b.cfg.AuthEmulatorHost != "" {
		os.Setenv("FIREBASE_AUTH_EMULATOR_HOST", b.cfg.AuthEmulatorHost)
	}

	opts, err := b.clientOptions(ctx)
	if err != nil {
		return err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: b.cfg.ProjectId}, opts...)
	if err != nil {
		return fmt.Errorf("error initializing firebase app: %w", err)
	}
	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("error getting firestore client: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		firestoreClient.Close()
		return fmt.Errorf("error getting auth client: %w", err)
	}
	identity, err := identitytoolkit.NewService(ctx, b.identityOptions()...)
	if err != nil {
		firestoreClient.Close()
		return fmt.Errorf("error creating identity toolkit client: %w", err)
	}

	b.app = app
	b.firestore = firestoreClient
	b.auth = authClient
	b.identity = identity
	log.Infof("connected to firebase project %s", b.cfg.ProjectId)
	return nil
}

func (b *Backend) clientOptions(ctx context.Context) ([]option.ClientOption, error) {
	if b.cfg.CredentialsFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(b.cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read firebase credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid firebase credentials: %w", err)
	}
	return []option.ClientOption{option.WithCredentials(creds)}, nil
}

func (b *Backend) identityOptions() []option.ClientOption {
	opts := []option.ClientOption{option.WithAPIKey(b.cfg.ApiKey)}
	if b.cfg.AuthEmulatorHost != "" {
		opts = append(opts, option.WithEndpoint(emulatorEndpoint(b.cfg.AuthEmulatorHost)))
	}
	return opts
}

func emulatorEndpoint(host string) string {
	return "http://" + host + "/www.googleapis.com/identitytoolkit/v3/relyingparty/"
}
