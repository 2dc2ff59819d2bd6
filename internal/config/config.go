package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/tenzor/internal/theme"
)

// ErrNoBaseURL is returned when no analysis service has been configured.
var ErrNoBaseURL = errors.New("no analysis service configured: set base_url or TENZOR_BACKEND_URL")

// Environment variables consulted by ApplyEnv.
const (
	EnvBackendURL = "TENZOR_BACKEND_URL"
	EnvTheme      = "TENZOR_THEME"
	EnvPixelRatio = "TENZOR_PIXEL_RATIO"
	EnvConfig     = "TENZOR_CONFIG"
)

// Notify selects which events raise a desktop notification.
type Notify struct {
	Result  bool
	Failure bool
	Export  bool
}

// Config holds the application configuration.
type Config struct {
	BaseURL       string
	Theme         string
	Color         string
	StrokeWidth   float64
	PixelRatio    float64 // 0 means detect from the display
	ResultDelay   time.Duration
	ClearOnResult bool
	SaveDir       string
	Notify        Notify
	Themes        map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Color:         "white",
		StrokeWidth:   4,
		ResultDelay:   time.Second,
		ClearOnResult: true,
		Notify: Notify{
			Result:  true,
			Failure: true,
			Export:  true,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// ApplyEnv overrides values from the environment. getenv is usually
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvBackendURL)); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvTheme)); v != "" {
		c.Theme = v
	}
	if v := strings.TrimSpace(getenv(EnvPixelRatio)); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			return fmt.Errorf("%s: invalid ratio %q", EnvPixelRatio, v)
		}
		c.PixelRatio = r
	}
	return nil
}

// RequireBaseURL reports ErrNoBaseURL when the analysis service is unset.
func (c *Config) RequireBaseURL() (string, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return "", ErrNoBaseURL
	}
	return c.BaseURL, nil
}

// Save writes the configuration in RC format.
func (c *Config) Save(path string) error {
	if err := os.WriteFile(path, []byte(c.String()), 0o644); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.BaseURL != "" {
		fmt.Fprintf(&sb, "base_url = %s\n", c.BaseURL)
	}
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.Color != "" {
		fmt.Fprintf(&sb, "color = %s\n", c.Color)
	}
	fmt.Fprintf(&sb, "stroke_width = %s\n", strconv.FormatFloat(c.StrokeWidth, 'g', -1, 64))
	if c.PixelRatio > 0 {
		fmt.Fprintf(&sb, "pixel_ratio = %s\n", strconv.FormatFloat(c.PixelRatio, 'g', -1, 64))
	}
	fmt.Fprintf(&sb, "result_delay = %s\n", c.ResultDelay)
	fmt.Fprintf(&sb, "clear_on_result = %v\n", c.ClearOnResult)
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "result = %v\n", c.Notify.Result)
	fmt.Fprintf(&sb, "failure = %v\n", c.Notify.Failure)
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	sb.WriteString("\n")

	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_ = theme.Write(&sb, c.Themes[name], " = ")
		sb.WriteString("\n")
	}

	return sb.String()
}
