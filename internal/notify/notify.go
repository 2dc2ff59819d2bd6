package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/tenzor/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventResult fires when analysis results are published.
	EventResult Event = "result"
	// EventFailure fires when an analysis request fails.
	EventFailure Event = "failure"
	// EventExport fires when the board is written to disk or the clipboard.
	EventExport Event = "export"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
	Urgency  platform.Urgency
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "Tenzor",
		Events: map[Event]EventPreference{
			EventResult:  {Template: "%s", Urgency: platform.UrgencyNormal},
			EventFailure: {Template: "Analysis failed: %s", Urgency: platform.UrgencyCritical},
			EventExport:  {Template: "Saved %s", Urgency: platform.UrgencyLow},
		},
	}
}

// LoadPreferences reads overrides from environment variables.
func LoadPreferences(getenv func(string) string) Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(getenv("TENZOR_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	apply := func(key string, event Event) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			p := prefs.Events[event]
			p.Template = v
			prefs.Events[event] = p
		}
	}
	apply("TENZOR_NOTIFY_RESULT_TEXT", EventResult)
	apply("TENZOR_NOTIFY_FAILURE_TEXT", EventFailure)
	apply("TENZOR_NOTIFY_EXPORT_TEXT", EventExport)
	return prefs
}

// send is swapped out by tests.
var send = platform.Notify

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a new Notifier using the provided preferences. All events
// start disabled.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Result announces published results, with an optional board preview.
func (n *Notifier) Result(lines []string, preview image.Image) {
	if !n.enabledFor(EventResult) || len(lines) == 0 {
		return
	}
	opts := platform.Options{}
	if preview != nil {
		if path, cleanup, err := createPreview(preview); err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventResult, strings.Join(lines, "\n"), opts)
}

// Failure announces a failed analysis.
func (n *Notifier) Failure(err error) {
	if err == nil || !n.enabledFor(EventFailure) {
		return
	}
	n.dispatch(EventFailure, err.Error(), platform.Options{})
}

// Export announces a written file. Paths are made absolute.
func (n *Notifier) Export(path string) {
	if !n.enabledFor(EventExport) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if strings.HasSuffix(strings.ToLower(abs), ".png") {
			if _, statErr := os.Stat(abs); statErr == nil {
				opts.IconPath = abs
			}
		}
	}
	n.dispatch(EventExport, detail, opts)
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	pref, ok := n.prefs.Events[event]
	template := strings.TrimSpace(pref.Template)
	if !ok || template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	opts.Urgency = pref.Urgency
	if err := send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "tenzor-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
