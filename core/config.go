package core

import (
	"fmt"
	"strings"
	"time"
)

type TokenConfig struct {
	AccessTokenTTLSeconds  int `koanf:"access_token_ttl_seconds" mapstructure:"access_token_ttl_seconds"`
	RefreshTokenTTLSeconds int `koanf:"refresh_token_ttl_seconds" mapstructure:"refresh_token_ttl_seconds"`
}

type CacheConfig struct {
	Enabled    bool  `koanf:"enabled" mapstructure:"enabled"`
	MaxBytes   int64 `koanf:"max_bytes" mapstructure:"max_bytes"`
	MaxCount   int   `koanf:"max_count" mapstructure:"max_count"`
	TTLSeconds int   `koanf:"ttl_seconds" mapstructure:"ttl_seconds"`
}

type ResolverConfig struct {
	BatchSize int `koanf:"batch_size" mapstructure:"batch_size"`
}

type HTTPConfig struct {
	// AuthPathPrefix is never intercepted by the resolver.
	AuthPathPrefix string `koanf:"auth_path_prefix" mapstructure:"auth_path_prefix"`
}

type Config struct {
	ServiceName string         `koanf:"service_name" mapstructure:"service_name"`
	Token       TokenConfig    `koanf:"token" mapstructure:"token"`
	Cache       CacheConfig    `koanf:"cache" mapstructure:"cache"`
	Resolver    ResolverConfig `koanf:"resolver" mapstructure:"resolver"`
	HTTP        HTTPConfig     `koanf:"http" mapstructure:"http"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "gateway",
		Token: TokenConfig{
			AccessTokenTTLSeconds:  int((2 * time.Hour).Seconds()),
			RefreshTokenTTLSeconds: int((30 * 24 * time.Hour).Seconds()),
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxBytes:   8 << 20,
			MaxCount:   1024,
			TTLSeconds: int((5 * time.Minute).Seconds()),
		},
		Resolver: ResolverConfig{
			BatchSize: 200,
		},
		HTTP: HTTPConfig{
			AuthPathPrefix: "/auth",
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Token.AccessTokenTTLSeconds <= 0 {
		return fmt.Errorf("core: token.access_token_ttl_seconds must be positive")
	}
	if c.Token.RefreshTokenTTLSeconds <= 0 {
		return fmt.Errorf("core: token.refresh_token_ttl_seconds must be positive")
	}
	if c.Cache.Enabled {
		if c.Cache.MaxCount <= 0 {
			return fmt.Errorf("core: cache.max_count must be positive when the cache is enabled")
		}
		if c.Cache.MaxBytes <= 0 {
			return fmt.Errorf("core: cache.max_bytes must be positive when the cache is enabled")
		}
		if c.Cache.TTLSeconds <= 0 {
			return fmt.Errorf("core: cache.ttl_seconds must be positive when the cache is enabled")
		}
	}
	if c.Resolver.BatchSize <= 0 {
		return fmt.Errorf("core: resolver.batch_size must be positive")
	}
	return nil
}

func (c TokenConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLSeconds) * time.Second
}

func (c TokenConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLSeconds) * time.Second
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}
