package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultRunAddress   = ":8420"
	defaultDatabasePath = "data/notevault.db"
	defaultMigrations   = "migrations"
	defaultSyncInterval = 30 * time.Second
	defaultSyncTimeout  = 10 * time.Second
)

type Config struct {
	Env         string
	Server      Server
	DB          DB
	Replication Replication
}

type Server struct {
	RunAddress string
}

type DB struct {
	Path       string
	Migrations string
}

type Replication struct {
	ServerName     string
	PeerURL        string
	InternalSecret string
	SyncInterval   time.Duration
	SyncTimeout    time.Duration
}

// MustLoad reads the environment (optionally seeded from a .env file) and
// exits the process on settings the server cannot run without.
func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()

	cfg := Config{
		Env: viper.GetString("app_env"),
		Server: Server{
			RunAddress: viper.GetString("run_address"),
		},
		DB: DB{
			Path:       viper.GetString("database_path"),
			Migrations: viper.GetString("migrations_path"),
		},
		Replication: Replication{
			ServerName:     viper.GetString("server_name"),
			PeerURL:        viper.GetString("peer_url"),
			InternalSecret: viper.GetString("internal_secret"),
			SyncInterval:   viper.GetDuration("sync_interval"),
			SyncTimeout:    viper.GetDuration("sync_timeout"),
		},
	}

	if cfg.Env == "" {
		cfg.Env = EnvLocal
	}
	if cfg.Server.RunAddress == "" {
		cfg.Server.RunAddress = defaultRunAddress
	}
	if cfg.DB.Path == "" {
		cfg.DB.Path = defaultDatabasePath
	}
	if cfg.DB.Migrations == "" {
		cfg.DB.Migrations = defaultMigrations
	}
	if cfg.Replication.ServerName == "" {
		cfg.Replication.ServerName = "notevault"
	}
	if cfg.Replication.SyncInterval <= 0 {
		cfg.Replication.SyncInterval = defaultSyncInterval
	}
	if cfg.Replication.SyncTimeout <= 0 {
		cfg.Replication.SyncTimeout = defaultSyncTimeout
	}
	if cfg.Replication.InternalSecret == "" {
		log.Fatalln("INTERNAL_SECRET must be set")
	}

	return &cfg
}
