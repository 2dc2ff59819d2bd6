package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/example/tenzor/internal/config"
)

type configCmd struct {
	*root
	fs *flag.FlagSet
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	c := &configCmd{root: r, fs: fs}
	fs.SetOutput(io.Discard)
	if err := parseFlags(fs, c, args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Program() string        { return c.root.subcommand("config") }
func (c *configCmd) FlagSet() *flag.FlagSet { return c.fs }
func (c *configCmd) Template() string       { return "config.txt" }

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}

	switch args[0] {
	case "print":
		return c.runPrint()
	case "save":
		return c.runSave()
	case "path":
		fmt.Fprintln(c.stdout, c.savePath())
		return nil
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

func (c *configCmd) runPrint() error {
	fmt.Fprint(c.stdout, c.root.config.String())
	return nil
}

// savePath is the file that was loaded, or where a new one belongs.
func (c *configCmd) savePath() string {
	if configPathOverride != "" {
		return configPathOverride
	}
	if path, _ := config.NewLoader(version, "").GetConfigPath(); path != "" {
		return path
	}
	return config.DefaultPath()
}

func (c *configCmd) runSave() error {
	path := c.savePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := c.root.config.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Configuration saved to %s\n", path)
	return nil
}
