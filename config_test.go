package main

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			dataDir:       "data",
			fps:           60,
			port:          8080,
			sessionLength: defaultSessionLength,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"tls pair", func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }, false},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, true},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }, true},
		{"port zero", func(c *Config) { c.port = 0 }, true},
		{"port too high", func(c *Config) { c.port = 65536 }, true},
		{"no data dir", func(c *Config) { c.dataDir = "" }, true},
		{"zero session", func(c *Config) { c.sessionLength = 0 }, true},
		{"negative session", func(c *Config) { c.sessionLength = -time.Second }, true},
		{"fps zero", func(c *Config) { c.fps = 0 }, true},
		{"fps too high", func(c *Config) { c.fps = 241 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestFlagsFromEnvironment(t *testing.T) {
	t.Setenv("FAKEREAL_PORT", "9090")
	t.Setenv("FAKEREAL_SESSION_LENGTH", "90s")

	cfg := &Config{}
	cmd := newCmd(cfg)
	if err := cmd.ParseFlags([]string{"--data", "/srv/images"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if cfg.port != 9090 {
		t.Fatalf("port = %d, want 9090 from env", cfg.port)
	}
	if cfg.sessionLength != 90*time.Second {
		t.Fatalf("session length = %s, want 90s from env", cfg.sessionLength)
	}
	if cfg.dataDir != "/srv/images" {
		t.Fatalf("data = %q, want flag value", cfg.dataDir)
	}
	if cfg.fps != 60 || cfg.leaderboardDir != "." {
		t.Fatalf("defaults not applied: fps=%d leaderboard-dir=%q", cfg.fps, cfg.leaderboardDir)
	}
	if cfg.scheme() != "http" || cfg.frameInterval() != time.Second/60 {
		t.Fatalf("scheme=%s interval=%s", cfg.scheme(), cfg.frameInterval())
	}
}
