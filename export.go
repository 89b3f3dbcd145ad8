package easel

import (
	"image"

	"github.com/fogleman/gg"
)

// ExportOptions controls PNG export.
type ExportOptions struct {
	// Scale multiplies canvas units to pixels. Zero means 1.
	Scale float64
	// Padding in canvas units around the content bounds. Zero means 24.
	Padding float64
}

func (o ExportOptions) normalized() ExportOptions {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Padding <= 0 {
		o.Padding = 24
	}
	return o
}

// kindColor returns the fill color for an entity kind.
func kindColor(kind string) (r, g, b float64) {
	switch kind {
	case "text":
		return 0.93, 0.89, 0.75
	case "frame":
		return 0.72, 0.84, 0.74
	default: // "box" and anything unknown
		return 0.69, 0.77, 0.87
	}
}

// contentBounds returns the union of all entity rectangles in world space.
// ok is false for an empty scene.
func contentBounds(s *State) (Rect, bool) {
	var bounds Rect
	found := false
	s.Each(func(e *Entity) {
		w := e.World()
		r := Rect{X: w.X, Y: w.Y, Width: e.Size.Width, Height: e.Size.Height}
		if !found {
			bounds = r
			found = true
		} else {
			bounds = bounds.Union(r)
		}
	})
	return bounds, found
}

// RenderImage rasterizes the current scene: every entity as a rounded
// rectangle at its world position with its label, parent links as lines
// between centers. Children draw above their parents.
func RenderImage(s *State, opts ExportOptions) image.Image {
	opts = opts.normalized()

	bounds, ok := contentBounds(s)
	if !ok {
		bounds = Rect{Width: 320, Height: 200}
	}
	w := int((bounds.Width + 2*opts.Padding) * opts.Scale)
	h := int((bounds.Height + 2*opts.Padding) * opts.Scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(0.118, 0.118, 0.157)
	dc.Clear()
	dc.Scale(opts.Scale, opts.Scale)
	dc.Translate(opts.Padding-bounds.X, opts.Padding-bounds.Y)

	// Parent links first so entities draw over them.
	dc.SetRGB(0.42, 0.42, 0.5)
	dc.SetLineWidth(1.5)
	s.Each(func(e *Entity) {
		parent := s.Entity(e.ParentID)
		if parent == nil {
			return
		}
		pw, ew := parent.World(), e.World()
		dc.DrawLine(
			pw.X+parent.Size.Width/2, pw.Y+parent.Size.Height/2,
			ew.X+e.Size.Width/2, ew.Y+e.Size.Height/2,
		)
		dc.Stroke()
	})

	for _, id := range s.Roots() {
		drawSubtree(dc, s, id)
	}
	return dc.Image()
}

// drawSubtree draws one entity and then its children on top of it.
func drawSubtree(dc *gg.Context, s *State, id string) {
	e := s.Entity(id)
	if e == nil {
		return
	}
	w := e.World()

	r, g, b := kindColor(e.Kind)
	dc.DrawRoundedRectangle(w.X, w.Y, e.Size.Width, e.Size.Height, 6)
	dc.SetRGB(r, g, b)
	dc.FillPreserve()
	switch {
	case e.Selected:
		dc.SetRGB(1, 0.78, 0.25)
		dc.SetLineWidth(3)
	case e.Anchored:
		dc.SetRGB(0.85, 0.45, 0.45)
		dc.SetLineWidth(2)
	default:
		dc.SetRGB(0.25, 0.25, 0.32)
		dc.SetLineWidth(1.5)
	}
	dc.Stroke()

	label := e.Label
	if label == "" {
		label = e.ID
	}
	dc.SetRGB(0.1, 0.1, 0.13)
	dc.DrawStringAnchored(label, w.X+e.Size.Width/2, w.Y+e.Size.Height/2, 0.5, 0.5)

	for _, childID := range e.Children {
		drawSubtree(dc, s, childID)
	}
}

// ExportPNG writes the rendered scene to a PNG file.
func ExportPNG(s *State, path string, opts ExportOptions) error {
	return gg.SavePNG(path, RenderImage(s, opts))
}
