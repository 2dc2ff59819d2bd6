//go:build !linux && !darwin && !windows

package platform

// Notify drops the message; there is no notification service to reach.
func Notify(string, string, Options) error { return nil }
