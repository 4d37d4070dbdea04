package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/composure/component"
	"github.com/lixenwraith/composure/session"
)

// Horizontal jitter cycle while the screen shakes
var shakeOffsets = [...]int{-1, 1, 0, 1, -1, 0}

// Draw renders the latest snapshot
func (f *Frontend) Draw() {
	f.frame++
	snap, ok := f.Snapshot()

	base := tcell.StyleDefault.Background(RgbBackground).Foreground(RgbHudText)
	if ok && snap.DisruptionActive && snap.Disruption.Kind == component.DisruptionColorInversion {
		base = base.Reverse(true)
	}
	f.screen.Fill(' ', base)

	switch {
	case !ok || snap.State == session.NameIdle:
		w, h := f.screen.Size()
		f.drawCentered(w, h/2, "Get ready...", base)
	case snap.State == session.NameFinished || f.sessionEnd:
		f.drawResults(snap, base)
	default:
		f.drawField(snap, base)
		f.drawHUD(snap, base)
	}
	f.screen.Show()
}

func (f *Frontend) drawField(snap session.Snapshot, base tcell.Style) {
	l := f.Layout()
	if snap.DisruptionActive && snap.Disruption.Kind == component.DisruptionScreenShake {
		l.OffsetX += shakeOffsets[f.frame%len(shakeOffsets)]
	}

	cw, ch := l.cellW(), l.cellH()
	for _, u := range snap.Units {
		style := base.Foreground(RgbUnitStatic)
		glyph := '█'
		switch {
		case u.Completed:
			style = base.Foreground(RgbUnitCompleted)
			glyph = '░'
		case u.Mobile:
			style = base.Foreground(RgbUnitMobile)
		}

		cc, cr := l.ToCell(u.X, u.Y)
		rx := int(math.Ceil(u.Radius / cw))
		ry := int(math.Ceil(u.Radius / ch))
		for row := cr - ry; row <= cr+ry; row++ {
			for col := cc - rx; col <= cc+rx; col++ {
				x, y, ok := l.ToField(col, row)
				if !ok {
					continue
				}
				if (col == cc && row == cr) || u.Contains(x, y) {
					f.screen.SetContent(col, row, glyph, nil, style)
				}
			}
		}
	}
}

func (f *Frontend) drawHUD(snap session.Snapshot, base tcell.Style) {
	w, h := f.screen.Size()

	status := fmt.Sprintf(" Level %d  Task %d  Difficulty %d  Score %d/%d",
		snap.Level, snap.Task, snap.Difficulty, snap.Score, snap.Total)
	f.drawText(0, 0, status, base)

	timeStyle := base.Foreground(RgbHudText)
	timeText := fmt.Sprintf("%3.0fs ", snap.TimeLeft.Seconds())
	if snap.DisruptionActive && snap.Disruption.Kind == component.DisruptionTimePressure {
		timeStyle = base.Foreground(RgbTimePressure).Bold(true).Blink(true)
		timeText = fmt.Sprintf("%5.1fs ", snap.TimeLeft.Seconds())
	}
	f.drawText(w-len(timeText), 0, timeText, timeStyle)

	if snap.DisruptionActive {
		f.drawText(1, 1, snap.Disruption.Kind.Message(), base.Foreground(RgbFeedbackWarning).Bold(true))
	} else {
		f.drawText(1, 1, "click targets   a: abandon task   q: quit", base.Foreground(RgbHudDim))
	}

	if f.status != nil {
		line := strings.Join(f.status.Lines(), " ") + " "
		f.drawText(max(0, w-len(line)), 1, line, base.Foreground(RgbHudDim))
	}

	if snap.FeedbackLive {
		f.drawCentered(w, h-1, snap.Feedback.Text, base.Foreground(feedbackColor(snap.Feedback.Category)).Bold(true))
	}
}

func (f *Frontend) drawResults(snap session.Snapshot, base tcell.Style) {
	w, h := f.screen.Size()
	lines := []string{
		"Session complete",
		"",
		fmt.Sprintf("Tasks finished      %d", snap.TasksFinished),
		fmt.Sprintf("Stability           %4.1f", snap.Ratings.Stability),
		fmt.Sprintf("Recovery            %4.1f", snap.Ratings.Recovery),
		fmt.Sprintf("Persistence         %4.1f", snap.Ratings.Persistence),
		fmt.Sprintf("Composite           %4.1f", snap.Ratings.Composite),
		"",
		"press any key to exit",
	}

	top := max(0, h/2-len(lines)/2)
	for i, line := range lines {
		style := base
		switch {
		case i == 0:
			style = base.Bold(true)
		case i == len(lines)-1:
			style = base.Foreground(RgbHudDim)
		case i == 6:
			style = base.Foreground(RgbRating).Bold(true)
		}
		f.drawCentered(w, top+i, line, style)
	}
}

func (f *Frontend) drawCentered(w, y int, text string, style tcell.Style) {
	f.drawText(max(0, (w-len([]rune(text)))/2), y, text, style)
}

func (f *Frontend) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		f.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
