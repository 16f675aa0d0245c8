package score

// Canvas layout shared by the renderer and the drag-to-pitch mapping.
const (
	CanvasWidth  = 1000
	CanvasHeight = 1000

	BarsPerRow = 4
	BarWidth   = 250
	RowHeight  = 100

	// StaffTop is the gap between a row's top and its glyph baseline.
	StaffTop = 50
	// DragBaseline is the pointer offset within a row that maps to height 0.
	DragBaseline = 100
)

// RowOf returns the staff row that bar barIdx is laid out on.
func RowOf(barIdx int) int { return barIdx / BarsPerRow }

// RowTop is the canvas y of the row holding bar barIdx.
func RowTop(barIdx int) float64 { return float64(RowOf(barIdx) * RowHeight) }

// ColumnOf is the bar's cell index within its row.
func ColumnOf(barIdx int) int { return barIdx % BarsPerRow }
