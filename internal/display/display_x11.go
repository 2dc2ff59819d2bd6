//go:build linux || freebsd || openbsd || netbsd || dragonfly

package display

import (
	"fmt"
	"image"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

func platformMonitors() ([]Monitor, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	defer conn.Close()

	setup := xproto.Setup(conn)
	if setup == nil {
		return nil, fmt.Errorf("xproto setup unavailable")
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		return nil, fmt.Errorf("xproto screen unavailable")
	}
	if err := randr.Init(conn); err != nil {
		return screenMonitor(screen), nil
	}
	ms, err := fetchMonitors(conn, screen.Root)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return screenMonitor(screen), nil
	}
	return ms, nil
}

// screenMonitor treats the whole X screen as one monitor when randr is
// missing.
func screenMonitor(screen *xproto.ScreenInfo) []Monitor {
	return []Monitor{{
		Name:     "screen",
		Rect:     image.Rect(0, 0, int(screen.WidthInPixels), int(screen.HeightInPixels)),
		Primary:  true,
		WidthMM:  int(screen.WidthInMillimeters),
		HeightMM: int(screen.HeightInMillimeters),
	}}
}

func fetchMonitors(conn *xgb.Conn, root xproto.Window) ([]Monitor, error) {
	res, err := randr.GetScreenResources(conn, root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}
	primaryOutput := randr.Output(0)
	if primary, err := randr.GetOutputPrimary(conn, root).Reply(); err == nil {
		primaryOutput = primary.Output
	}
	ms := make([]Monitor, 0, len(res.Outputs))
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, output, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		ms = append(ms, Monitor{
			Index:    len(ms),
			Name:     strings.TrimSpace(string(info.Name)),
			Rect:     image.Rect(int(crtc.X), int(crtc.Y), int(crtc.X)+int(crtc.Width), int(crtc.Y)+int(crtc.Height)),
			Primary:  output == primaryOutput,
			WidthMM:  int(info.MmWidth),
			HeightMM: int(info.MmHeight),
		})
	}
	return ms, nil
}
