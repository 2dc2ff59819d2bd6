package notify

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/tenzor/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
}

func capture(t *testing.T) *[]sent {
	t.Helper()
	var got []sent
	orig := send
	send = func(title, body string, opts platform.Options) error {
		if opts.IconPath != "" {
			if _, err := os.Stat(opts.IconPath); err != nil {
				t.Errorf("icon %s missing during send: %v", opts.IconPath, err)
			}
		}
		got = append(got, sent{title, body, opts})
		return nil
	}
	t.Cleanup(func() { send = orig })
	return &got
}

func TestDisabledByDefault(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Result([]string{"2+2 = 4"}, nil)
	n.Failure(errors.New("boom"))
	n.Export("board.png")
	if len(*got) != 0 {
		t.Fatalf("expected no notifications, got %v", *got)
	}
}

func TestResultWithPreview(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Enable(EventResult, true)
	n.Result([]string{"2+2 = 4", "x = 5"}, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if len(*got) != 1 {
		t.Fatalf("expected one notification, got %d", len(*got))
	}
	s := (*got)[0]
	if s.title != "Tenzor" || s.body != "2+2 = 4\nx = 5" {
		t.Fatalf("unexpected notification %+v", s)
	}
	if s.opts.IconPath == "" {
		t.Fatalf("expected preview icon")
	}
	if _, err := os.Stat(s.opts.IconPath); !os.IsNotExist(err) {
		t.Fatalf("preview not removed after send")
	}
}

func TestFailureIsCritical(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Enable(EventFailure, true)
	n.Failure(errors.New("connection refused"))
	if len(*got) != 1 || (*got)[0].opts.Urgency != platform.UrgencyCritical {
		t.Fatalf("unexpected notifications %+v", *got)
	}
	if !strings.Contains((*got)[0].body, "connection refused") {
		t.Fatalf("body %q", (*got)[0].body)
	}
}

func TestExportAbsolutePath(t *testing.T) {
	got := capture(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "board.pdf")
	n := New(DefaultPreferences())
	n.Enable(EventExport, true)
	n.Export(path)
	if len(*got) != 1 || (*got)[0].body != "Saved "+path {
		t.Fatalf("unexpected notifications %+v", *got)
	}
}

func TestLoadPreferences(t *testing.T) {
	env := map[string]string{"TENZOR_NOTIFY_TITLE": "Maths", "TENZOR_NOTIFY_EXPORT_TEXT": "Wrote %s"}
	p := LoadPreferences(func(k string) string { return env[k] })
	if p.Title != "Maths" || p.Events[EventExport].Template != "Wrote %s" {
		t.Fatalf("unexpected prefs %+v", p)
	}
	if p.Events[EventResult].Template != "%s" {
		t.Fatalf("result template lost")
	}
}
