package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/tenzor/internal/config"
	"github.com/example/tenzor/internal/notify"
	"github.com/example/tenzor/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs          *flag.FlagSet
	program     string
	stdout      io.Writer
	notifier    *notify.Notifier
	config      *config.Config
	baseURL     string
	configPath  string
	themeName   string
	activeTheme *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func (r *root) Template() string {
	return "root.txt"
}

func (r *root) subcommand(name string) string {
	return strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
}

func newRoot(cfg *config.Config) *root {
	r := &root{
		fs:       flag.NewFlagSet("tenzor", flag.ContinueOnError),
		program:  "tenzor",
		stdout:   os.Stdout,
		notifier: notify.New(notify.LoadPreferences(os.Getenv)),
		config:   cfg,
	}
	r.fs.SetOutput(io.Discard)
	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.baseURL, "url", "", "analysis service base URL (overrides base_url and "+config.EnvBackendURL+")")
	r.fs.StringVar(&r.themeName, "theme", "", "colour theme to use ("+strings.Join(theme.Names(), ", ")+")")
	r.fs.StringVar(&r.configPath, "config", "", "path to the configuration file (overrides "+config.EnvConfig+")")
	return r
}

func loadConfig() *config.Config {
	cfg, err := config.NewLoader(version, configPathOverride).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
		if envErr := cfg.ApplyEnv(os.Getenv); envErr != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", envErr)
		}
	}
	return cfg
}

// resolveTheme picks the theme named on the command line, in the config or
// through the environment, falling back to the default.
func (r *root) resolveTheme() *theme.Theme {
	name := r.themeName
	if name == "" {
		name = r.config.Theme
	}
	loader := theme.NewLoader()
	loader.Inline = r.config.Themes
	t, err := loader.Load(name)
	if err != nil {
		if name != "" && !strings.EqualFold(name, "default") {
			fmt.Fprintf(os.Stderr, "warning: failed to load theme '%s': %v. using default.\n", name, err)
		}
		return theme.Default()
	}
	return t
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &UsageError{of: r}
		}
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.configPath != "" {
		configPathOverride = r.configPath
		cfg, err := config.NewLoader(version, r.configPath).Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		r.config = cfg
	}
	if r.baseURL != "" {
		r.config.BaseURL = r.baseURL
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventResult, r.config.Notify.Result)
		r.notifier.Enable(notify.EventFailure, r.config.Notify.Failure)
		r.notifier.Enable(notify.EventExport, r.config.Notify.Export)
	}
	r.activeTheme = r.resolveTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "board":
		cmd, err = parseBoardCmd(subArgs, r)
	case "analyze":
		cmd, err = parseAnalyzeCmd(subArgs, r)
	case "stub":
		cmd, err = parseStubCmd(subArgs, r)
	case "colors":
		cmd, err = parseColorsCmd(subArgs, r)
	case "displays":
		cmd, err = parseDisplaysCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	case "help":
		return &UsageError{of: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot(loadConfig())
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
