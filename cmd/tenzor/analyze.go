package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/example/tenzor/internal/analysis"
	"github.com/example/tenzor/internal/canvas"
	"github.com/example/tenzor/internal/placement"
)

// varsFlag collects repeated -var name=value pairs.
type varsFlag map[string]string

func (v varsFlag) String() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + v[k]
	}
	return strings.Join(parts, ",")
}

func (v varsFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	v[name] = strings.TrimSpace(value)
	return nil
}

type analyzeCmd struct {
	*root
	fs     *flag.FlagSet
	file   string
	vars   varsFlag
	asJSON bool
}

func parseAnalyzeCmd(args []string, r *root) (*analyzeCmd, error) {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	a := &analyzeCmd{root: r, fs: fs, vars: varsFlag{}}
	fs.StringVar(&a.file, "file", "", "PNG image of the board to analyse (- for stdin)")
	fs.Var(a.vars, "var", "variable binding name=value; may be repeated")
	fs.BoolVar(&a.asJSON, "json", false, "print the service reply as JSON")
	fs.SetOutput(io.Discard)
	if err := parseFlags(fs, a, args); err != nil {
		return nil, err
	}
	if a.file == "" && fs.NArg() == 1 {
		a.file = fs.Arg(0)
	} else if fs.NArg() != 0 {
		return nil, &UsageError{of: a}
	}
	if a.file == "" {
		return nil, fmt.Errorf("-file is required")
	}
	return a, nil
}

func (a *analyzeCmd) Program() string        { return a.root.subcommand("analyze") }
func (a *analyzeCmd) FlagSet() *flag.FlagSet { return a.fs }
func (a *analyzeCmd) Template() string       { return "analyze.txt" }

func (a *analyzeCmd) readImage() ([]byte, error) {
	if a.file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(a.file)
}

type analyzeOutput struct {
	Data     []analysis.Entry  `json:"data"`
	Bindings analysis.Bindings `json:"bindings"`
	Center   *[2]float64       `json:"center,omitempty"`
}

func (a *analyzeCmd) Run() error {
	baseURL, err := a.config.RequireBaseURL()
	if err != nil {
		return err
	}
	data, err := a.readImage()
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	img, err := decodePNG(data)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	entries, err := analysis.NewClient(baseURL).Analyze(ctx, canvas.DataURI(data), a.vars)
	if err != nil {
		return err
	}
	bindings := analysis.Bindings(a.vars).Clone()
	bindings.Apply(entries)

	if a.asJSON {
		out := analyzeOutput{Data: entries, Bindings: bindings}
		if c, ok := placement.Center(img); ok {
			out.Center = &[2]float64{c.X, c.Y}
		}
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.stdout, "no expressions recognised")
		return nil
	}
	for _, e := range entries {
		marker := ""
		if e.Assign {
			marker = " (assigned)"
		}
		fmt.Fprintf(a.stdout, "%s%s\n", e.Display().Text(), marker)
	}
	return nil
}
