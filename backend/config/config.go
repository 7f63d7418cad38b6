package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ellavondegurechaff/gohye-trades/internal/gateways/database"
)

const (
	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"
)

// WebConfig contains the HTTP surface settings
type WebConfig struct {
	Host         string   `toml:"host" env:"HOST"`
	Port         int      `toml:"port" env:"PORT"`
	SessionKey   string   `toml:"session_key" env:"SESSION_KEY"`
	AllowOrigins []string `toml:"allow_origins" env:"ALLOW_ORIGINS" envSeparator:","`
	Environment  string   `toml:"environment" env:"ENVIRONMENT"`
	// ProposeLimit caps proposals per caller within ProposeWindow, 0 disables it.
	ProposeLimit  int               `toml:"propose_limit" env:"PROPOSE_LIMIT"`
	ProposeWindow database.Duration `toml:"propose_window" env:"PROPOSE_WINDOW"`
}

// DefaultWebConfig returns the settings used when a section is omitted
func DefaultWebConfig() WebConfig {
	return WebConfig{
		Host:          "0.0.0.0",
		Port:          8080,
		AllowOrigins:  []string{"http://localhost:3000", "http://localhost:8080"},
		Environment:   EnvironmentProduction,
		ProposeLimit:  30,
		ProposeWindow: database.Duration(time.Minute),
	}
}

// Validate checks the web settings
func (w WebConfig) Validate() error {
	if w.Port <= 0 || w.Port > 65535 {
		return fmt.Errorf("web.port must be between 1 and 65535, got %d", w.Port)
	}
	if strings.TrimSpace(w.SessionKey) == "" {
		return fmt.Errorf("web.session_key is required")
	}
	switch w.Environment {
	case EnvironmentProduction, EnvironmentDevelopment:
	default:
		return fmt.Errorf("web.environment must be %q or %q, got %q", EnvironmentProduction, EnvironmentDevelopment, w.Environment)
	}
	if w.ProposeLimit < 0 {
		return fmt.Errorf("web.propose_limit must not be negative")
	}
	// the limiter counts windows in whole seconds
	if w.ProposeLimit > 0 && w.ProposeWindow.Std() < time.Second {
		return fmt.Errorf("web.propose_window must be at least 1s when propose_limit is set, got %s", w.ProposeWindow.Std())
	}
	return nil
}

// Address returns the listen address
func (w WebConfig) Address() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

func (w WebConfig) IsProduction() bool {
	return w.Environment == EnvironmentProduction
}

// CORSOrigins joins the allowed origins the way fiber's cors middleware expects
func (w WebConfig) CORSOrigins() string {
	return strings.Join(w.AllowOrigins, ",")
}
