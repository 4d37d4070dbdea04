// Package report summarizes stored assessment records for the terminal
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/lixenwraith/composure/metrics"
	"github.com/lixenwraith/composure/parameter"
	"github.com/lixenwraith/composure/vmath"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#737aa2"))
	scoreStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#e0af68"))
)

// Summary aggregates composite scores across records
type Summary struct {
	Sessions      int
	TasksFinished int
	TargetsHit    int
	MeanComposite float64
	BestComposite float64
	Latest        float64
}

// Summarize computes the aggregate over recs in stored order
func Summarize(recs []metrics.AssessmentRecord) Summary {
	s := Summary{Sessions: len(recs)}
	if len(recs) == 0 {
		return s
	}

	composites := make([]float64, 0, len(recs))
	for _, rec := range recs {
		composites = append(composites, rec.NeuroticismScore)
		s.TasksFinished += len(rec.PerformanceStability)
		for _, t := range rec.PerformanceStability {
			s.TargetsHit += t.TargetsHit
		}
		s.BestComposite = max(s.BestComposite, rec.NeuroticismScore)
	}
	s.MeanComposite = vmath.Round1(vmath.Mean(composites))
	s.Latest = recs[len(recs)-1].NeuroticismScore
	return s
}

// Render writes a table of the last limit records, newest first, followed by the summary
// limit <= 0 shows every record
func Render(w io.Writer, recs []metrics.AssessmentRecord, now time.Time, limit int) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render("No assessments recorded yet."))
		return err
	}

	shown := recs
	if limit > 0 && len(shown) > limit {
		shown = shown[len(shown)-limit:]
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("#", "When", "Tasks", "Abandoned", "Played", "Stability", "Recovery", "Persistence", "Composite").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 8:
				return scoreStyle
			default:
				return cellStyle
			}
		})

	for i := len(shown) - 1; i >= 0; i-- {
		rec := shown[i]
		t.Row(
			strconv.Itoa(len(recs)-len(shown)+i+1),
			when(rec.Timestamp, now),
			strconv.Itoa(len(rec.PerformanceStability)),
			strconv.Itoa(rec.AbandonedCount()),
			played(rec.TotalTimePlayed),
			rating(rec.StabilityRating),
			rating(rec.DisruptionRecoveryRating),
			rating(rec.PersistenceRating),
			rating(rec.NeuroticismScore),
		)
	}

	s := Summarize(recs)
	footer := fmt.Sprintf("%s sessions, %s tasks, %s targets hit   mean %.1f   best %.1f   latest %.1f",
		humanize.Comma(int64(s.Sessions)), humanize.Comma(int64(s.TasksFinished)), humanize.Comma(int64(s.TargetsHit)),
		s.MeanComposite, s.BestComposite, s.Latest)

	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n", titleStyle.Render("Composure assessments"), t.Render(), dimStyle.Render(footer))
	return err
}

// when renders the stored local timestamp relative to now
func when(ts string, now time.Time) string {
	at, err := time.ParseInLocation(parameter.TimestampLayout, ts, now.Location())
	if err != nil {
		return ts
	}
	return humanize.RelTime(at, now, "ago", "from now")
}

func played(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Round(time.Second).String()
}

func rating(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
