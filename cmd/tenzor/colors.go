package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/example/tenzor/internal/display"
	"github.com/example/tenzor/internal/palette"
)

type colorsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseColorsCmd(args []string, r *root) (*colorsCmd, error) {
	fs := flag.NewFlagSet("colors", flag.ContinueOnError)
	cmd := &colorsCmd{root: r, fs: fs}
	fs.SetOutput(io.Discard)
	if err := parseFlags(fs, cmd, args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *colorsCmd) Run() error {
	for i, sw := range palette.New().Swatches() {
		marker := " "
		if i == palette.DefaultIndex {
			marker = "*"
		}
		fmt.Fprintf(c.stdout, "%s %d: %-10s %s\n", marker, i+1, sw.Name, sw.Hex())
	}
	fmt.Fprintln(c.stdout, "keys 1-9 select a swatch on the board; -color also accepts SVG names and #rrggbb")
	return nil
}

func (c *colorsCmd) Program() string        { return c.root.subcommand("colors") }
func (c *colorsCmd) FlagSet() *flag.FlagSet { return c.fs }
func (c *colorsCmd) Template() string       { return "colors.txt" }

type displaysCmd struct {
	*root
	fs *flag.FlagSet
}

func parseDisplaysCmd(args []string, r *root) (*displaysCmd, error) {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	cmd := &displaysCmd{root: r, fs: fs}
	fs.SetOutput(io.Discard)
	if err := parseFlags(fs, cmd, args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *displaysCmd) Run() error {
	monitors, err := display.Monitors()
	if err != nil {
		return err
	}
	if len(monitors) == 0 {
		fmt.Fprintln(c.stdout, "no displays available")
		return nil
	}
	fmt.Fprintln(c.stdout, "available displays (* marks the primary display):")
	for _, m := range monitors {
		marker := " "
		if m.Primary {
			marker = "*"
		}
		fmt.Fprintf(c.stdout, "%s %d: %s %dx%d+%d+%d ratio %g\n", marker, m.Index, m.Name,
			m.Rect.Dx(), m.Rect.Dy(), m.Rect.Min.X, m.Rect.Min.Y, m.Ratio())
	}
	return nil
}

func (c *displaysCmd) Program() string        { return c.root.subcommand("displays") }
func (c *displaysCmd) FlagSet() *flag.FlagSet { return c.fs }
func (c *displaysCmd) Template() string       { return "displays.txt" }
