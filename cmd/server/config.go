package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/stormhaven/go-accounts/mailer"
)

// appConfig is the env driven process configuration. It implements the
// accounts.Config getters consumed by the authenticator and middleware.
type appConfig struct {
	Addr            string
	DSN             string
	Debug           bool
	SigningKey      string
	SigningMethod   string
	ContextKey      string
	TokenExpiration int
	TokenLookup     string
	AuthScheme      string
	Issuer          string
	Audience        []string
	SMTP            mailer.Config
}

func loadConfig() *appConfig {
	return &appConfig{
		Addr:            getenv("ADDR", ":3000"),
		DSN:             getenv("DATABASE_DSN", "file:accounts.db?cache=shared&_pragma=foreign_keys(1)"),
		Debug:           getenvBool("DEBUG", false),
		SigningKey:      getenv("JWT_SECRET", ""),
		SigningMethod:   getenv("JWT_SIGNING_METHOD", "HS256"),
		ContextKey:      getenv("JWT_CONTEXT_KEY", "user"),
		TokenExpiration: getenvInt("JWT_EXPIRATION_HOURS", 24*7),
		TokenLookup:     getenv("JWT_TOKEN_LOOKUP", "header:Authorization"),
		AuthScheme:      getenv("JWT_AUTH_SCHEME", "Bearer"),
		Issuer:          getenv("JWT_ISSUER", "accounts"),
		Audience:        getenvList("JWT_AUDIENCE", nil),
		SMTP: mailer.Config{
			Host:     getenv("SMTP_HOST", ""),
			Port:     getenvInt("SMTP_PORT", 587),
			Username: getenv("SMTP_USER", ""),
			Password: getenv("SMTP_PASS", ""),
			From:     getenv("SMTP_FROM", ""),
			FromName: getenv("SMTP_FROM_NAME", ""),
			Disabled: getenvBool("SMTP_DISABLE", false),
		},
	}
}

func (c *appConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *appConfig) GetSigningMethod() string {
	return c.SigningMethod
}

func (c *appConfig) GetContextKey() string {
	return c.ContextKey
}

func (c *appConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *appConfig) GetTokenLookup() string {
	return c.TokenLookup
}

func (c *appConfig) GetAuthScheme() string {
	return c.AuthScheme
}

func (c *appConfig) GetIssuer() string {
	return c.Issuer
}

func (c *appConfig) GetAudience() []string {
	return c.Audience
}

func getenv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getenvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return def
}

func getenvList(key string, def []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}

	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
