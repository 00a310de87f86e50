package layout

import (
	"image"
	"testing"
)

func TestRowsDropsOverflow(t *testing.T) {
	rows := Rows(image.Rect(0, 22, 240, 120), 5, 22)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[3] != image.Rect(0, 88, 240, 110) {
		t.Fatalf("unexpected last row %v", rows[3])
	}
}

func TestColumnsAbsorbRemainder(t *testing.T) {
	cols := Columns(image.Rect(0, 0, 100, 10), 3)
	if len(cols) != 3 || cols[2] != image.Rect(66, 0, 100, 10) {
		t.Fatalf("unexpected columns %v", cols)
	}
}

func TestCenterAndFitSquare(t *testing.T) {
	r := image.Rect(0, 0, 240, 135)
	if got := FitSquare(r); got != image.Rect(0, 0, 135, 135) {
		t.Fatalf("FitSquare = %v", got)
	}
	if got := Center(r, 100, 100); got != image.Rect(70, 17, 170, 117) {
		t.Fatalf("Center = %v", got)
	}
	if got := Inset(image.Rect(0, 0, 10, 10), 6); got != image.Rect(4, 4, 6, 6) {
		t.Fatalf("Inset = %v", got)
	}
}
