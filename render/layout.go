package render

// HUD rows reserved above and below the field
const (
	hudTop    = 2
	hudBottom = 1
)

// Layout maps field coordinates onto the terminal grid
// Axes scale independently so the whole field is always visible
type Layout struct {
	OffsetX, OffsetY int
	Cols, Rows       int
	FieldW, FieldH   float64
}

// NewLayout fits a fieldW x fieldH field into a screen of the given size
func NewLayout(screenW, screenH int, fieldW, fieldH float64) Layout {
	return Layout{
		OffsetY: hudTop,
		Cols:    max(1, screenW),
		Rows:    max(1, screenH-hudTop-hudBottom),
		FieldW:  fieldW,
		FieldH:  fieldH,
	}
}

func (l Layout) cellW() float64 { return l.FieldW / float64(l.Cols) }
func (l Layout) cellH() float64 { return l.FieldH / float64(l.Rows) }

// ToField returns the field position at the center of screen cell (col, row)
// ok is false outside the field area
func (l Layout) ToField(col, row int) (x, y float64, ok bool) {
	c, r := col-l.OffsetX, row-l.OffsetY
	if c < 0 || r < 0 || c >= l.Cols || r >= l.Rows {
		return 0, 0, false
	}
	return (float64(c) + 0.5) * l.cellW(), (float64(r) + 0.5) * l.cellH(), true
}

// ToCell returns the screen cell containing field position (x, y)
func (l Layout) ToCell(x, y float64) (col, row int) {
	c := min(max(int(x/l.cellW()), 0), l.Cols-1)
	r := min(max(int(y/l.cellH()), 0), l.Rows-1)
	return c + l.OffsetX, r + l.OffsetY
}
