package platform

import "time"

// Urgency follows the freedesktop notification levels.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// AppName is reported to the notification centre. Empty means "Tenzor".
	AppName string
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	Urgency  Urgency
	// Timeout of zero uses five seconds.
	Timeout time.Duration
}

func (o Options) appName() string {
	if o.AppName == "" {
		return "Tenzor"
	}
	return o.AppName
}

func (o Options) timeoutMillis() int32 {
	if o.Timeout <= 0 {
		return 5000
	}
	return int32(o.Timeout / time.Millisecond)
}
