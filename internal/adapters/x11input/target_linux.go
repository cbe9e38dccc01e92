//go:build linux

package x11input

import (
	"fmt"
	"sync"

	"github.com/YanamiRei/wayclicker/internal/core/autoclicker"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
)

type fakeInput interface {
	FakeButton(eventType byte, button xproto.Button) error
	Sync()
}

type xtestConn struct {
	conn    *xgb.Conn
	rootWin xproto.Window
}

func (c *xtestConn) FakeButton(eventType byte, button xproto.Button) error {
	return xtest.FakeInputChecked(
		c.conn,
		eventType,
		byte(button),
		xproto.TimeCurrentTime,
		c.rootWin,
		0,
		0,
		0,
	).Check()
}

func (c *xtestConn) Sync() {
	c.conn.Sync()
}

// Target backs autoclicker.Target with XTEST fake button events.
type Target struct {
	mu      sync.Mutex
	input   fakeInput
	pending bool
}

// NewTarget opens the X display named by DISPLAY and initializes XTEST.
func NewTarget() (*Target, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}
	conn := xu.Conn()
	if conn == nil {
		return nil, fmt.Errorf("failed to open X11 connection")
	}
	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("XTEST extension unavailable: %w", err)
	}
	return &Target{input: &xtestConn{conn: conn, rootWin: xu.RootWin()}}, nil
}

func (t *Target) EmitButton(code uint16, pressed bool) error {
	button, ok := codeToXButton(code)
	if !ok {
		return fmt.Errorf("button code %d has no X11 equivalent", code)
	}
	eventType := byte(xproto.ButtonRelease)
	if pressed {
		eventType = xproto.ButtonPress
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.input.FakeButton(eventType, button); err != nil {
		return err
	}
	t.pending = true
	return nil
}

func (t *Target) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending {
		t.input.Sync()
		t.pending = false
	}
	return nil
}

func codeToXButton(code uint16) (xproto.Button, bool) {
	switch code {
	case autoclicker.LeftButtonCode:
		return xproto.ButtonIndex1, true
	case autoclicker.MiddleButtonCode:
		return xproto.ButtonIndex2, true
	case autoclicker.RightButtonCode:
		return xproto.ButtonIndex3, true
	default:
		return 0, false
	}
}
