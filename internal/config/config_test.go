package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	type want struct {
		baseURL        string
		tokenFile      string
		pollInterval   time.Duration
		pollTimeout    time.Duration
		requestTimeout time.Duration
	}

	tests := []struct {
		name  string
		env   map[string]string
		flags []string
		want  want
	}{
		{
			name:  "defaults",
			env:   map[string]string{},
			flags: []string{},
			want: want{
				baseURL:        "http://localhost:8080",
				tokenFile:      ".goldstore-token",
				pollInterval:   5 * time.Second,
				pollTimeout:    2 * time.Minute,
				requestTimeout: 10 * time.Second,
			},
		},
		{
			name: "env only",
			env: map[string]string{
				"BASE_URL":      "https://shop.example.com",
				"TOKEN_FILE":    "/tmp/token",
				"POLL_INTERVAL": "2s",
				"POLL_TIMEOUT":  "1m",
			},
			flags: []string{},
			want: want{
				baseURL:        "https://shop.example.com",
				tokenFile:      "/tmp/token",
				pollInterval:   2 * time.Second,
				pollTimeout:    time.Minute,
				requestTimeout: 10 * time.Second,
			},
		},
		{
			name: "flags only",
			env:  map[string]string{},
			flags: []string{
				"-b", "http://flag.example.com",
				"-t", "/var/token",
				"-i", "3s",
				"-m", "30s",
				"-q", "7s",
			},
			want: want{
				baseURL:        "http://flag.example.com",
				tokenFile:      "/var/token",
				pollInterval:   3 * time.Second,
				pollTimeout:    30 * time.Second,
				requestTimeout: 7 * time.Second,
			},
		},
		{
			name: "env overrides flags",
			env: map[string]string{
				"BASE_URL":      "https://env.example.com",
				"POLL_INTERVAL": "9s",
			},
			flags: []string{
				"-b", "http://flag.example.com",
				"-i", "3s",
			},
			want: want{
				baseURL:        "https://env.example.com",
				tokenFile:      ".goldstore-token",
				pollInterval:   9 * time.Second,
				pollTimeout:    2 * time.Minute,
				requestTimeout: 10 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			os.Args = append([]string{"test"}, tt.flags...)

			cfg, err := Parse()
			require.NoError(t, err)

			assert.Equal(t, tt.want.baseURL, cfg.BaseURL)
			assert.Equal(t, tt.want.tokenFile, cfg.TokenFile)
			assert.Equal(t, tt.want.pollInterval, cfg.PollInterval)
			assert.Equal(t, tt.want.pollTimeout, cfg.PollTimeout)
			assert.Equal(t, tt.want.requestTimeout, cfg.RequestTimeout)
		})
	}
}
