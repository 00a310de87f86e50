package layout

import "image"

// Inset shrinks rect by paddingPx on all sides.
func Inset(rect image.Rectangle, paddingPx int) image.Rectangle {
	if paddingPx <= 0 {
		return rect
	}
	out := image.Rect(rect.Min.X+paddingPx, rect.Min.Y+paddingPx, rect.Max.X-paddingPx, rect.Max.Y-paddingPx)
	return Normalize(out)
}

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// SplitVertical splits rect into left and right parts.
// leftWidthPx is clamped to [0, rect.Dx()].
func SplitVertical(rect image.Rectangle, leftWidthPx int) (left image.Rectangle, right image.Rectangle) {
	rect = Normalize(rect)
	width := rect.Dx()
	if leftWidthPx < 0 {
		leftWidthPx = 0
	}
	if leftWidthPx > width {
		leftWidthPx = width
	}
	left = image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+leftWidthPx, rect.Max.Y)
	right = image.Rect(rect.Min.X+leftWidthPx, rect.Min.Y, rect.Max.X, rect.Max.Y)
	return left, right
}

// SplitHorizontal splits rect into top and bottom parts.
// topHeightPx is clamped to [0, rect.Dy()].
func SplitHorizontal(rect image.Rectangle, topHeightPx int) (top image.Rectangle, bottom image.Rectangle) {
	rect = Normalize(rect)
	height := rect.Dy()
	if topHeightPx < 0 {
		topHeightPx = 0
	}
	if topHeightPx > height {
		topHeightPx = height
	}
	top = image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+topHeightPx)
	bottom = image.Rect(rect.Min.X, rect.Min.Y+topHeightPx, rect.Max.X, rect.Max.Y)
	return top, bottom
}

// AnchorTopLeft returns a rectangle of size (widthPx,heightPx) placed in the top-left of rect.
func AnchorTopLeft(rect image.Rectangle, widthPx, heightPx int) image.Rectangle {
	rect = Normalize(rect)
	if widthPx < 0 {
		widthPx = 0
	}
	if heightPx < 0 {
		heightPx = 0
	}
	maxW := rect.Dx()
	maxH := rect.Dy()
	if widthPx > maxW {
		widthPx = maxW
	}
	if heightPx > maxH {
		heightPx = maxH
	}
	return image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+widthPx, rect.Min.Y+heightPx)
}

// FitSquare returns the largest square that fits into rect, anchored at the top-left.
func FitSquare(rect image.Rectangle) image.Rectangle {
	rect = Normalize(rect)
	size := rect.Dx()
	if rect.Dy() < size {
		size = rect.Dy()
	}
	if size < 0 {
		size = 0
	}
	return AnchorTopLeft(rect, size, size)
}

// Center returns a rectangle of size (widthPx,heightPx) centered in rect.
func Center(rect image.Rectangle, widthPx, heightPx int) image.Rectangle {
	rect = Normalize(rect)
	inner := AnchorTopLeft(rect, widthPx, heightPx)
	dx := (rect.Dx() - inner.Dx()) / 2
	dy := (rect.Dy() - inner.Dy()) / 2
	return inner.Add(image.Pt(dx, dy))
}

// Rows stacks n rows of rowHeightPx from the top of rect. Rows that would
// cross the bottom edge are dropped.
func Rows(rect image.Rectangle, n, rowHeightPx int) []image.Rectangle {
	rect = Normalize(rect)
	if n <= 0 || rowHeightPx <= 0 {
		return nil
	}
	rows := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		top := rect.Min.Y + i*rowHeightPx
		if top+rowHeightPx > rect.Max.Y {
			break
		}
		rows = append(rows, image.Rect(rect.Min.X, top, rect.Max.X, top+rowHeightPx))
	}
	return rows
}

// Columns splits rect into n equal columns; the last absorbs the remainder.
func Columns(rect image.Rectangle, n int) []image.Rectangle {
	rect = Normalize(rect)
	if n <= 0 {
		return nil
	}
	width := rect.Dx() / n
	cols := make([]image.Rectangle, n)
	for i := range cols {
		left := rect.Min.X + i*width
		right := left + width
		if i == n-1 {
			right = rect.Max.X
		}
		cols[i] = image.Rect(left, rect.Min.Y, right, rect.Max.Y)
	}
	return cols
}
