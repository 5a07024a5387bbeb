package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.ServerURL)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.ValidateVideoURLs)
	assert.True(t, cfg.EnforceTimeOrder)
	assert.NotEmpty(t, cfg.CredentialsFile, "expected a default credentials path")
}

func TestLoad(t *testing.T) {
	tcases := []struct {
		name string
		env  map[string]string
		err  bool
	}{
		{
			name: "valid overrides",
			env: map[string]string{
				"WATCHROOM_API_URL":          "https://rooms.example.com",
				"WATCHROOM_TOKEN_TTL":        "24h",
				"WATCHROOM_CREDENTIALS_FILE": "/tmp/creds.json",
			},
			err: false,
		},
		{
			name: "rejects non-http scheme",
			env:  map[string]string{"WATCHROOM_API_URL": "ftp://rooms.example.com"},
			err:  true,
		},
		{
			name: "rejects zero token TTL",
			env:  map[string]string{"WATCHROOM_TOKEN_TTL": "0s"},
			err:  true,
		},
		{
			name: "rejects zero timeout",
			env:  map[string]string{"WATCHROOM_REQUEST_TIMEOUT": "0s"},
			err:  true,
		},
		{
			name: "rejects bad rate settings",
			env:  map[string]string{"WATCHROOM_BURST": "0"},
			err:  true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.err {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			for k := range tc.env {
				switch k {
				case "WATCHROOM_API_URL":
					assert.Equal(t, tc.env[k], cfg.ServerURL)
				case "WATCHROOM_CREDENTIALS_FILE":
					assert.Equal(t, tc.env[k], cfg.CredentialsFile)
				}
			}
		})
	}
}
