// Package config loads application settings from a YAML file with
// environment variable overrides, and exposes them through the getter
// interfaces the auth package expects.
package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env    string       `yaml:"env" env:"APP_ENV" env-default:"local"`
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	DB     DBConfig     `yaml:"db"`
	Redis  RedisConfig  `yaml:"redis"`
}

type ServerConfig struct {
	Address string `yaml:"address" env:"SERVER_ADDRESS" env-default:":8080"`
}

type AuthConfig struct {
	SigningKey      string        `yaml:"signing_key" env:"AUTH_SIGNING_KEY"`
	SigningMethod   string        `yaml:"signing_method" env-default:"HS256"`
	Issuer          string        `yaml:"issuer" env-default:"book-management"`
	Audience        []string      `yaml:"audience"`
	AccessTokenTTL  time.Duration `yaml:"access_ttl" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_ttl" env-default:"168h"`

	AccessCookieName  string `yaml:"access_cookie" env-default:"access_token"`
	RefreshCookieName string `yaml:"refresh_cookie" env-default:"refresh_token"`
	CookieSecure      bool   `yaml:"cookie_secure" env:"AUTH_COOKIE_SECURE" env-default:"true"`

	ContextKey  string `yaml:"context_key" env-default:"user"`
	TokenLookup string `yaml:"token_lookup" env-default:"cookie:access_token,header:Authorization"`
	AuthScheme  string `yaml:"auth_scheme" env-default:"Bearer"`

	CSRFKey string `yaml:"csrf_key" env:"AUTH_CSRF_KEY"`
}

type DBConfig struct {
	DSN string `yaml:"dsn" env:"DB_DSN" env-default:"file:app.db?cache=shared&_fk=1"`
}

type RedisConfig struct {
	Address  string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
}

func Load(path string) *Config {
	var config Config
	if err := cleanenv.ReadConfig(path, &config); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &config
}

// The getters below satisfy the auth.Config interface.

func (c *Config) GetSigningKey() string    { return c.Auth.SigningKey }
func (c *Config) GetSigningMethod() string { return c.Auth.SigningMethod }
func (c *Config) GetIssuer() string        { return c.Auth.Issuer }
func (c *Config) GetAudience() []string    { return c.Auth.Audience }

func (c *Config) GetAccessTokenTTL() time.Duration  { return c.Auth.AccessTokenTTL }
func (c *Config) GetRefreshTokenTTL() time.Duration { return c.Auth.RefreshTokenTTL }

func (c *Config) GetAccessCookieName() string  { return c.Auth.AccessCookieName }
func (c *Config) GetRefreshCookieName() string { return c.Auth.RefreshCookieName }
func (c *Config) GetCookieSecure() bool        { return c.Auth.CookieSecure }

func (c *Config) GetContextKey() string  { return c.Auth.ContextKey }
func (c *Config) GetTokenLookup() string { return c.Auth.TokenLookup }
func (c *Config) GetAuthScheme() string  { return c.Auth.AuthScheme }
