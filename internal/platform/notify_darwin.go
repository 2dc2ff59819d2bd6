//go:build darwin

package platform

import "os/exec"

// Notify posts a Notification Center banner through osascript.
func Notify(title, body string, opts Options) error {
	return exec.Command("osascript", "-e", appleScript(title, body, opts)).Run()
}
