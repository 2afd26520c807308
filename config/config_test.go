package config

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.DefaultQuality != 0.92 {
		t.Errorf("DefaultQuality = %v", cfg.DefaultQuality)
	}
	if cfg.DefaultFormat != "jpeg" {
		t.Errorf("DefaultFormat = %q", cfg.DefaultFormat)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"quality too high", func(c *Config) { c.DefaultQuality = 1.2 }, true},
		{"quality negative", func(c *Config) { c.DefaultQuality = -0.1 }, true},
		{"bad format", func(c *Config) { c.DefaultFormat = "gif" }, true},
		{"png format", func(c *Config) { c.DefaultFormat = "png" }, false},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, true},
		{"local without root", func(c *Config) { c.Storage = StorageLocal }, true},
		{"local with root", func(c *Config) {
			c.Storage = StorageLocal
			c.Local.RootDir = "/tmp/out"
		}, false},
		{"s3 without bucket", func(c *Config) { c.Storage = StorageS3 }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := Validate(cfg)
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate = %v, wantErr %t", err, tc.wantErr)
			}
		})
	}
}
