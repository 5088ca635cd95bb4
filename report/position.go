package report

import "fmt"

// TextPosition represents a positional range in a source file.  Lines and
// columns are 1-indexed; LastLine/LastCol point at the character trailing
// the range (one over).
type TextPosition struct {
	Name                string // source file name
	FirstLine, FirstCol int
	LastLine, LastCol   int
}

// NewPosition creates a position for a single point in the named file.
func NewPosition(name string, line, col int) *TextPosition {
	return &TextPosition{Name: name, FirstLine: line, FirstCol: col, LastLine: line, LastCol: col}
}

// PositionFromRange takes two positions and computes the position spanning
// them.
func PositionFromRange(start, end *TextPosition) *TextPosition {
	return &TextPosition{
		Name:      start.Name,
		FirstLine: start.FirstLine,
		FirstCol:  start.FirstCol,
		LastLine:  end.LastLine,
		LastCol:   end.LastCol,
	}
}

func (tp *TextPosition) String() string {
	return fmt.Sprintf("%s:%d:%d", tp.Name, tp.FirstLine, tp.FirstCol)
}
