//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package display

func platformMonitors() ([]Monitor, error) { return nil, errNoMonitors }
