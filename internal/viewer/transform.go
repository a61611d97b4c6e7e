// Package viewer holds the state behind the result panel: the zoom and pan
// transform over the source image and the direction-aware text editor.
package viewer

import (
	"fmt"
	"sync"
)

const (
	MinScale  = 1.0
	MaxScale  = 4.0
	ScaleStep = 0.5
)

// Point is a position in screen pixels
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transform is the zoom/pan state of the image viewer. Offsets are kept in
// unscaled screen pixels.
type Transform struct {
	mu        sync.Mutex
	scale     float64
	offset    Point
	dragging  bool
	dragStart Point
	dragBase  Point
}

// TransformState is a snapshot of a Transform
type TransformState struct {
	Scale    float64 `json:"scale"`
	Offset   Point   `json:"offset"`
	Dragging bool    `json:"dragging"`
	CSS      string  `json:"css"`
}

func NewTransform() *Transform {
	return &Transform{scale: MinScale}
}

// ZoomIn raises the scale one step, up to MaxScale
func (t *Transform) ZoomIn() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scale = min(MaxScale, t.scale+ScaleStep)
	return t.scale
}

// ZoomOut lowers the scale one step. Reaching MinScale recentres the image.
func (t *Transform) ZoomOut() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scale = max(MinScale, t.scale-ScaleStep)
	if t.scale == MinScale {
		t.offset = Point{}
		t.dragging = false
	}
	return t.scale
}

// Reset returns to scale 1 with no offset
func (t *Transform) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scale = MinScale
	t.offset = Point{}
	t.dragging = false
}

// StartDrag begins a pan at p. Panning is only possible while zoomed in.
func (t *Transform) StartDrag(p Point) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.scale <= MinScale {
		return false
	}
	t.dragging = true
	t.dragStart = p
	t.dragBase = t.offset
	return true
}

// DragTo moves the pan to p. The offset is always the total drag delta
// added to the offset captured at StartDrag, so repeated move events
// cannot accumulate error.
func (t *Transform) DragTo(p Point) Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dragging {
		return t.offset
	}
	t.offset = Point{
		X: t.dragBase.X + (p.X - t.dragStart.X),
		Y: t.dragBase.Y + (p.Y - t.dragStart.Y),
	}
	return t.offset
}

func (t *Transform) EndDrag() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dragging = false
}

// State returns a snapshot including the CSS transform to display
func (t *Transform) State() TransformState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TransformState{
		Scale:    t.scale,
		Offset:   t.offset,
		Dragging: t.dragging,
		CSS:      cssTransform(t.scale, t.offset),
	}
}

// cssTransform translates by offset/scale before scaling, so the offset
// lands in unscaled pixels after the scale is applied
func cssTransform(scale float64, offset Point) string {
	return fmt.Sprintf("translate(%gpx, %gpx) scale(%g)", offset.X/scale, offset.Y/scale, scale)
}
