package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/histmap/internal/history"
	"github.com/starford/histmap/internal/mindmap"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app" toml:"app"`
	History  HistoryConfig     `yaml:"history" toml:"history"`
	Journeys JourneysConfig    `yaml:"journeys" toml:"journeys"`
	SQLite   SQLiteConfig      `yaml:"sqlite" toml:"sqlite"`
	Layout   LayoutConfig      `yaml:"layout" toml:"layout"`
	Auth     AuthConfig        `yaml:"auth" toml:"auth"`
	CORS     CORSConfig        `yaml:"cors" toml:"cors"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	if err := c.Journeys.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// HistoryConfig selects the browser history source.
//
// Driver "chrome" reads a Chrome/Chromium History SQLite file; "export" reads
// a JSON array produced by chrome.history.search.
type HistoryConfig struct {
	Driver     string        `yaml:"driver" toml:"driver"`
	Path       string        `yaml:"path" toml:"path"`
	MaxResults int           `yaml:"max_results" toml:"max_results"`
	Window     time.Duration `yaml:"window" toml:"window"`
	Watch      bool          `yaml:"watch" toml:"watch"`
}

// Validate validates the history configuration.
func (c *HistoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(history.DriverChrome, history.DriverExport)),
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.MaxResults, validation.Required, validation.Min(1), validation.Max(500)),
		validation.Field(&c.Window, validation.Min(time.Duration(0))),
	)
}

// JourneysConfig holds the directory where journeys are stored.
type JourneysConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the journeys configuration.
func (c *JourneysConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// LayoutConfig sizes the canvas the mind map is drawn on.
type LayoutConfig struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
	Radius float64 `yaml:"radius" toml:"radius"`
}

// Validate validates the layout configuration.
func (c *LayoutConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Width, validation.Required, validation.Min(1.0)),
		validation.Field(&c.Height, validation.Required, validation.Min(1.0)),
		validation.Field(&c.Radius, validation.Required, validation.Min(1.0)),
	)
}

// Canvas converts the layout configuration for the mind map.
func (c *LayoutConfig) Canvas() mindmap.Canvas {
	return mindmap.Canvas{Width: c.Width, Height: c.Height, Radius: c.Radius}
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// CORSConfig lists origins allowed to call the API from a browser, such as
// the extension popup.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		History: HistoryConfig{
			Driver:     history.DriverChrome,
			Path:       "./History",
			MaxResults: 10,
			Window:     24 * time.Hour,
			Watch:      true,
		},
		Journeys: JourneysConfig{
			Path: "./journeys",
		},
		SQLite: SQLiteConfig{
			Path: "./histmap.db",
		},
		Layout: LayoutConfig{
			Width:  600,
			Height: 320,
			Radius: 120,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"chrome-extension://*", "http://localhost:*"},
		},
	}
}
