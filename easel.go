package easel

// Vec2 is a 2D vector used for positions, offsets, and deltas throughout
// the API. The coordinate system has its origin at the top-left, with Y
// increasing downward.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o component-wise.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o component-wise.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Size is an entity's width and height in canvas units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Union returns the smallest rectangle covering both r and other.
func (r Rect) Union(other Rect) Rect {
	x0 := min(r.X, other.X)
	y0 := min(r.Y, other.Y)
	x1 := max(r.X+r.Width, other.X+other.Width)
	y1 := max(r.Y+r.Height, other.Y+other.Height)
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Axis selects one of the two render-mode axes.
type Axis uint8

const (
	AxisHorizontal Axis = iota
	AxisVertical
)

// PositionMode is a per-axis presentation hint for the external renderer.
// It never affects transform math.
type PositionMode string

const (
	PositionRelative PositionMode = "relative"
	PositionAbsolute PositionMode = "absolute"
)

// valid reports whether m is one of the two known modes.
func (m PositionMode) valid() bool {
	return m == PositionRelative || m == PositionAbsolute
}

// RenderMode tags each axis independently as relative or absolute.
type RenderMode struct {
	Horizontal PositionMode `json:"horizontal"`
	Vertical   PositionMode `json:"vertical"`
}

// defaultRenderMode is the mode assigned to newly created entities.
var defaultRenderMode = RenderMode{Horizontal: PositionAbsolute, Vertical: PositionAbsolute}
