// Package config provides functionality for managing configuration options
// for the CropCircle binaries using command-line flags, environment variables
// and an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"
)

// Options holds the configuration values for the reference API server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address"`

	// DatabaseDSN holds the Postgres connection string.
	DatabaseDSN string `json:"database_dsn"`

	// MediaDir is where uploaded files are written.
	MediaDir string `json:"media_dir"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level"`

	// SessionRetention is how long revoked sessions are kept before cleanup.
	SessionRetention time.Duration `json:"-"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Parse reads server options from os.Args and the environment.
func Parse() (*Options, error) {
	return parse(os.Args[1:], os.Getenv)
}

func parse(args []string, getenv func(string) string) (*Options, error) {
	options := &Options{}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.MediaDir, "media", "media", "directory for uploaded files")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to TLS key")
	fs.StringVar(&options.LogLevel, "log-level", "info", "log level")
	fs.DurationVar(&options.SessionRetention, "session-retention", 30*24*time.Hour, "keep revoked sessions for")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}
	if err := loadFile(options.Config, options); err != nil {
		return nil, err
	}

	if serverAddress := getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}

	return options, nil
}

// ClientOptions holds the configuration values for the storefront client.
type ClientOptions struct {
	// APIURL is the storefront API base URL.
	APIURL string `json:"api_url"`

	// Store selects the credential backend: "file", "sqlite" or "memory".
	Store string `json:"store"`

	// StorePath is the file or database path for the credential backend.
	StorePath string `json:"store_path"`

	// CAFile is a PEM bundle trusted for HTTPS in place of the system roots.
	CAFile string `json:"ca_file"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level"`

	// ShowVersion prints build metadata and exits.
	ShowVersion bool `json:"-"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// ParseClient reads client options from os.Args and the environment.
func ParseClient() (*ClientOptions, error) {
	return parseClient(os.Args[1:], os.Getenv)
}

func parseClient(args []string, getenv func(string) string) (*ClientOptions, error) {
	options := &ClientOptions{}
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&options.APIURL, "url", "http://localhost:8080/api/", "storefront API base URL")
	fs.StringVar(&options.Store, "store", "file", "credential store: file | sqlite | memory")
	fs.StringVar(&options.StorePath, "store-path", "", "credential store path")
	fs.StringVar(&options.CAFile, "ca", "", "path to CA certificate for HTTPS")
	fs.StringVar(&options.LogLevel, "log-level", "warn", "log level")
	fs.BoolVar(&options.ShowVersion, "version", false, "show build version and date")
	fs.StringVar(&options.Config, "config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := getenv("CROPCIRCLE_CONFIG"); configPath != "" {
		options.Config = configPath
	}
	if err := loadFile(options.Config, options); err != nil {
		return nil, err
	}

	if u := getenv("CROPCIRCLE_API_URL"); u != "" {
		options.APIURL = u
	}
	if s := getenv("CROPCIRCLE_STORE"); s != "" {
		options.Store = s
	}

	switch options.Store {
	case "file", "sqlite", "memory":
	default:
		return nil, fmt.Errorf("unknown credential store %q", options.Store)
	}

	return options, nil
}

// loadFile overlays the JSON document at path onto dst. A missing file is
// ignored.
func loadFile(path string, dst any) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}
