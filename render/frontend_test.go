package render

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/composure/component"
	"github.com/lixenwraith/composure/score"
	"github.com/lixenwraith/composure/session"
	"github.com/lixenwraith/composure/status"
)

type activation struct{ x, y float64 }

type fakeController struct {
	activations []activation
	abandons    int
	quits       int
}

func (c *fakeController) Activate(x, y float64) bool {
	c.activations = append(c.activations, activation{x, y})
	return true
}
func (c *fakeController) Abandon() bool { c.abandons++; return true }
func (c *fakeController) Quit() bool    { c.quits++; return true }

func newTestFrontend(t *testing.T) (*Frontend, tcell.SimulationScreen, *fakeController) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	ctrl := &fakeController{}
	return New(screen, ctrl), screen, ctrl
}

func runningSnapshot() session.Snapshot {
	return session.Snapshot{
		State:       session.NameRunning,
		Level:       1,
		Task:        2,
		Difficulty:  1,
		Score:       1,
		Total:       2,
		TimeLeft:    12 * time.Second,
		FieldWidth:  800,
		FieldHeight: 600,
		Units: []component.WorkUnit{
			{X: 400, Y: 300, Radius: 30},
			{X: 100, Y: 100, Radius: 20, Completed: true},
		},
	}
}

func rowText(screen tcell.Screen, row int) string {
	w, _ := screen.Size()
	var sb strings.Builder
	for col := 0; col < w; col++ {
		r, _, _, _ := screen.GetContent(col, row)
		sb.WriteRune(r)
	}
	return sb.String()
}

func screenText(screen tcell.Screen) string {
	_, h := screen.Size()
	var sb strings.Builder
	for row := 0; row < h; row++ {
		sb.WriteString(rowText(screen, row))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func TestLayout_RoundTrip(t *testing.T) {
	l := NewLayout(80, 24, 800, 600)
	assert.Equal(t, 80, l.Cols)
	assert.Equal(t, 21, l.Rows)

	for _, cell := range [][2]int{{0, 2}, {79, 22}, {40, 12}} {
		x, y, ok := l.ToField(cell[0], cell[1])
		require.True(t, ok)
		col, row := l.ToCell(x, y)
		assert.Equal(t, cell[0], col)
		assert.Equal(t, cell[1], row)
	}

	_, _, ok := l.ToField(10, 0)
	assert.False(t, ok, "HUD rows are outside the field")
	_, _, ok = l.ToField(10, 23)
	assert.False(t, ok)

	col, row := l.ToCell(-50, 5000)
	assert.Equal(t, 0, col)
	assert.Equal(t, 22, row)
}

func TestFrontend_MouseActivatesOnPress(t *testing.T) {
	f, _, ctrl := newTestFrontend(t)
	f.Publish(runningSnapshot())

	assert.True(t, f.HandleEvent(tcell.NewEventMouse(5, 2, tcell.Button1, 0)))
	f.HandleEvent(tcell.NewEventMouse(6, 2, tcell.Button1, 0)) // Drag
	f.HandleEvent(tcell.NewEventMouse(6, 2, tcell.ButtonNone, 0))
	f.HandleEvent(tcell.NewEventMouse(10, 0, tcell.Button1, 0)) // HUD
	f.HandleEvent(tcell.NewEventMouse(10, 0, tcell.ButtonNone, 0))

	require.Len(t, ctrl.activations, 1)
	assert.InDelta(t, 55, ctrl.activations[0].x, 1e-9)
	assert.InDelta(t, 0.5*600.0/21, ctrl.activations[0].y, 1e-9)
}

func TestFrontend_Keys(t *testing.T) {
	f, _, ctrl := newTestFrontend(t)

	assert.True(t, f.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'a', 0)))
	assert.True(t, f.HandleEvent(tcell.NewEventKey(tcell.KeyBackspace2, 0, 0)))
	assert.True(t, f.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'x', 0)))
	assert.True(t, f.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', 0)))
	assert.True(t, f.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, 0)))

	assert.Equal(t, 2, ctrl.abandons)
	assert.Equal(t, 2, ctrl.quits)

	f.SessionEnded()
	assert.False(t, f.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'x', 0)))
	f.HandleEvent(tcell.NewEventMouse(5, 5, tcell.Button1, 0))
	assert.Empty(t, ctrl.activations)
}

func TestFrontend_DrawField(t *testing.T) {
	f, screen, _ := newTestFrontend(t)
	f.Publish(runningSnapshot())
	f.Draw()

	l := f.Layout()
	col, row := l.ToCell(400, 300)
	r, _, _, _ := screen.GetContent(col, row)
	assert.Equal(t, '█', r)

	col, row = l.ToCell(100, 100)
	r, _, _, _ = screen.GetContent(col, row)
	assert.Equal(t, '░', r)

	assert.Contains(t, rowText(screen, 0), "Score 1/2")
	assert.Contains(t, rowText(screen, 0), "12s")
	assert.Contains(t, rowText(screen, 1), "abandon")
}

func TestFrontend_DrawDisruptionAndFeedback(t *testing.T) {
	f, screen, _ := newTestFrontend(t)
	snap := runningSnapshot()
	snap.DisruptionActive = true
	snap.Disruption = component.Disruption{Kind: component.DisruptionColorInversion, Active: true}
	snap.Feedback = component.Feedback{Text: "Nice!", Category: component.FeedbackPositive}
	snap.FeedbackLive = true
	f.Publish(snap)
	f.Draw()

	_, _, style, _ := screen.GetContent(0, 10)
	_, _, attr := style.Decompose()
	assert.NotZero(t, attr&tcell.AttrReverse)

	assert.Contains(t, rowText(screen, 1), component.DisruptionColorInversion.Message())
	assert.Contains(t, rowText(screen, 23), "Nice!")
}

func TestFrontend_DrawResults(t *testing.T) {
	f, screen, _ := newTestFrontend(t)
	f.Publish(session.Snapshot{
		State:         session.NameFinished,
		TasksFinished: 4,
		Ratings:       score.Ratings{Stability: 9.1, Recovery: 5, Persistence: 10, Composite: 7.9},
	})
	f.Draw()

	text := screenText(screen)
	assert.Contains(t, text, "Session complete")
	assert.Contains(t, text, "7.9")
	assert.Contains(t, text, "9.1")
}

func TestFrontend_RunExitsAfterResultScreen(t *testing.T) {
	f, screen, _ := newTestFrontend(t)
	f.Publish(session.Snapshot{State: session.NameFinished})

	done := make(chan struct{})
	close(done)

	errCh := make(chan error, 1)
	go func() { errCh <- f.Run(context.Background(), done) }()

	// Keep posting until the loop has seen the session end and exits
	deadline := time.After(2 * time.Second)
	for {
		screen.InjectKey(tcell.KeyRune, 'x', 0)
		select {
		case err := <-errCh:
			assert.NoError(t, err)
			return
		case <-deadline:
			t.Fatal("Run did not exit")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestFrontend_RunStopsOnContext(t *testing.T) {
	f, _, _ := newTestFrontend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.Run(ctx, nil), context.Canceled)
}

func TestFrontend_StatusLine(t *testing.T) {
	f, screen, _ := newTestFrontend(t)
	reg := status.NewRegistry()
	reg.Ints.Get("engine.dropped").Store(3)
	f.ShowStatus(reg)
	f.Publish(runningSnapshot())
	f.Draw()

	assert.Contains(t, rowText(screen, 1), "engine.dropped=3")
}
