// Package render is the tcell terminal frontend: it draws session snapshots
// and turns mouse and key events into session commands
package render

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/composure/core"
	"github.com/lixenwraith/composure/session"
	"github.com/lixenwraith/composure/status"
)

// frameInterval paces redraws independently of the session tick
const frameInterval = 16 * time.Millisecond

// Controller receives input commands, typically an engine.ClockScheduler
type Controller interface {
	Activate(x, y float64) bool
	Abandon() bool
	Quit() bool
}

// Frontend owns the screen
type Frontend struct {
	screen tcell.Screen
	ctrl   Controller

	snap   atomic.Pointer[session.Snapshot]
	frame  int
	status *status.Registry

	buttonDown bool
	sessionEnd bool
}

// OpenScreen initializes the terminal and registers its teardown for crash reports
func OpenScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.HideCursor()
	core.SetCrashCleanup(screen.Fini)
	return screen, nil
}

// New creates a frontend drawing on screen and sending input to ctrl
func New(screen tcell.Screen, ctrl Controller) *Frontend {
	return &Frontend{screen: screen, ctrl: ctrl}
}

// ShowStatus enables the debug counters line
func (f *Frontend) ShowStatus(reg *status.Registry) {
	f.status = reg
}

// Publish stores the latest snapshot, safe to call from the session goroutine
func (f *Frontend) Publish(s session.Snapshot) {
	f.snap.Store(&s)
}

// Snapshot returns the latest published snapshot
func (f *Frontend) Snapshot() (session.Snapshot, bool) {
	s := f.snap.Load()
	if s == nil {
		return session.Snapshot{}, false
	}
	return *s, true
}

// Layout returns the current field to screen mapping
func (f *Frontend) Layout() Layout {
	w, h := f.screen.Size()
	snap, _ := f.Snapshot()
	fw, fh := snap.FieldWidth, snap.FieldHeight
	if fw <= 0 || fh <= 0 {
		fw, fh = float64(max(w, 1)), float64(max(h, 1))
	}
	return NewLayout(w, h, fw, fh)
}

// Run polls input and redraws until the user dismisses the result screen
// sessionDone is closed once the session loop has returned
func (f *Frontend) Run(ctx context.Context, sessionDone <-chan struct{}) error {
	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)

	core.Go(func() {
		for {
			ev := f.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	})

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-sessionDone:
			f.SessionEnded()
			sessionDone = nil
			f.Draw()

		case ev := <-events:
			if !f.HandleEvent(ev) {
				return nil
			}

		case <-ticker.C:
			f.Draw()
		}
	}
}

// SessionEnded switches input handling to the result screen
func (f *Frontend) SessionEnded() {
	f.sessionEnd = true
}

// HandleEvent maps one terminal event to a command
// Returns false when the frontend should exit
func (f *Frontend) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if f.sessionEnd {
			// Any key leaves the result screen
			return false
		}
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			f.ctrl.Quit()
		case ev.Key() == tcell.KeyBackspace || ev.Key() == tcell.KeyBackspace2:
			f.ctrl.Abandon()
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			f.ctrl.Quit()
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'a' || ev.Rune() == 'A'):
			f.ctrl.Abandon()
		}

	case *tcell.EventMouse:
		// Act on press only, held buttons repeat on motion
		pressed := ev.Buttons()&tcell.Button1 != 0
		if pressed && !f.buttonDown && !f.sessionEnd {
			col, row := ev.Position()
			if x, y, ok := f.Layout().ToField(col, row); ok {
				f.ctrl.Activate(x, y)
			}
		}
		f.buttonDown = pressed

	case *tcell.EventResize:
		f.screen.Sync()
		f.Draw()
	}
	return true
}
