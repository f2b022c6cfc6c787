package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const (
	StorePostgres  = "postgres"
	StoreFirestore = "firestore"

	AuthLocal    = "local"
	AuthFirebase = "firebase"
)

type Application struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Store    Store    `koanf:"store"`
	Auth     Auth     `koanf:"auth"`
	Database Database `koanf:"db"`
	Firebase Firebase `koanf:"firebase"`
	Redis    Redis    `koanf:"redis"`
	Jobs     Jobs     `koanf:"jobs"`
}

// Store selects the document store backing events and favorite markers.
type Store struct {
	Backend string `koanf:"backend"`
}

type Auth struct {
	Provider    string        `koanf:"provider"`
	TokenSecret string        `koanf:"tokensecret"`
	SessionTTL  time.Duration `koanf:"sessionttl"`
}

type Database struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Pass     string `koanf:"pass"`
	Name     string `koanf:"name"`
	Schema   string `koanf:"schema"`
	MaxConns int32  `koanf:"maxconns"`
	MinConns int32  `koanf:"minconns"`
}

type Firebase struct {
	ProjectId       string `koanf:"projectid"`
	CredentialsFile string `koanf:"credentialsfile"`
	// ApiKey is the web API key used for password sign-in and sign-up.
	ApiKey                string `koanf:"apikey"`
	FirestoreEmulatorHost string `koanf:"firestoreemulatorhost"`
	AuthEmulatorHost      string `koanf:"authemulatorhost"`
}

type Redis struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Channel  string `koanf:"channel"`
}

type Jobs struct {
	Enabled            bool   `koanf:"enabled"`
	SessionCleanupSpec string `koanf:"sessioncleanupspec"`
	DuplicateAuditSpec string `koanf:"duplicateauditspec"`
}

// NeedsDatabase reports whether any configured component is backed by Postgres.
func (a Application) NeedsDatabase() bool {
	return a.Store.Backend == StorePostgres || a.Auth.Provider == AuthLocal
}

// NeedsFirebase reports whether any configured component talks to Firebase.
func (a Application) NeedsFirebase() bool {
	return a.Store.Backend == StoreFirestore || a.Auth.Provider == AuthFirebase
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:8181",
		Port: 8181,
		Store: Store{
			Backend: StorePostgres,
		},
		Auth: Auth{
			Provider:   AuthLocal,
			SessionTTL: 7 * 24 * time.Hour,
		},
		Database: Database{
			Host:     "localhost",
			Port:     5432,
			User:     "eventdeck",
			Pass:     "",
			Name:     "eventdeck",
			Schema:   "public",
			MaxConns: 25,
			MinConns: 5,
		},
		Redis: Redis{
			Enabled: false,
			Addr:    "localhost:6379",
			Channel: "eventdeck:changes",
		},
		Jobs: Jobs{
			Enabled:            true,
			SessionCleanupSpec: "@hourly",
			DuplicateAuditSpec: "@daily",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "EVENTDECK_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "EVENTDECK_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
