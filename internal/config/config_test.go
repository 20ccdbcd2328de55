package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestParse_Defaults(t *testing.T) {
	opts, err := parse([]string{"-c", filepath.Join(t.TempDir(), "missing.json")}, env(nil))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", opts.Port)
	assert.Equal(t, "", opts.DatabaseDSN)
	assert.Equal(t, "media", opts.MediaDir)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, 30*24*time.Hour, opts.SessionRetention)
}

func TestParse_FileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"address":":9000","database_dsn":"postgres://file","media_dir":"/srv/media"}`), 0o600))

	opts, err := parse([]string{"-a", ":7000"}, env(map[string]string{
		"CONFIG":         path,
		"SERVER_ADDRESS": ":8443",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8443", opts.Port)
	assert.Equal(t, "postgres://file", opts.DatabaseDSN)
	assert.Equal(t, "/srv/media", opts.MediaDir)
}

func TestParse_BadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))

	_, err := parse([]string{"-config", path}, env(nil))
	assert.ErrorContains(t, err, "error while parsing config file")
}

func TestParse_UnknownFlag(t *testing.T) {
	_, err := parse([]string{"-nope"}, env(nil))
	assert.Error(t, err)
}

func TestParseClient(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		want    ClientOptions
		wantErr bool
	}{
		{
			name: "defaults",
			want: ClientOptions{APIURL: "http://localhost:8080/api/", Store: "file", LogLevel: "warn"},
		},
		{
			name: "flags",
			args: []string{"-url", "https://shop.example/api/", "-store", "sqlite", "-store-path", "/tmp/c.db", "-ca", "certs/ca.crt", "-version"},
			want: ClientOptions{APIURL: "https://shop.example/api/", Store: "sqlite", StorePath: "/tmp/c.db", CAFile: "certs/ca.crt", LogLevel: "warn", ShowVersion: true},
		},
		{
			name: "env overrides flags",
			args: []string{"-store", "sqlite"},
			env:  map[string]string{"CROPCIRCLE_API_URL": "https://env.example/api/", "CROPCIRCLE_STORE": "memory"},
			want: ClientOptions{APIURL: "https://env.example/api/", Store: "memory", LogLevel: "warn"},
		},
		{
			name:    "unknown store",
			args:    []string{"-store", "keychain"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseClient(tt.args, env(tt.env))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseClient_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_url":"https://file.example/api/","store":"sqlite","store_path":"c.db"}`), 0o600))

	got, err := parseClient(nil, env(map[string]string{"CROPCIRCLE_CONFIG": path}))
	require.NoError(t, err)
	assert.Equal(t, "https://file.example/api/", got.APIURL)
	assert.Equal(t, "sqlite", got.Store)
	assert.Equal(t, "c.db", got.StorePath)
	assert.Equal(t, path, got.Config)
}
