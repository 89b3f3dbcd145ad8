package easel

import (
	"fmt"
	"testing"
)

// buildWideState creates a state with 100 roots x 100 children each.
func buildWideState() *State {
	s := NewState()
	for i := 0; i < 100; i++ {
		parent := s.Create(float64(i), 0, "box")
		for j := 0; j < 100; j++ {
			child := s.Create(float64(j), 1, "box")
			s.Reparent(child.ID, parent.ID)
		}
	}
	return s
}

func BenchmarkPropagateTransforms10k(b *testing.B) {
	s := buildWideState()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		propagateTransforms(s.entities)
	}
}

func BenchmarkCapture10k(b *testing.B) {
	s := buildWideState()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Capture()
	}
}

func BenchmarkAddStateSuppressed(b *testing.B) {
	s := NewState()
	h := NewHistory(s.Capture, s.Restore)
	for i := 0; i < 200; i++ {
		s.Create(float64(i), float64(i), "box")
	}
	h.AddState("build")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Identical capture: exercises the equality suppression path.
		h.AddState("noop")
	}
}

func BenchmarkAddStateAppend(b *testing.B) {
	s := NewState()
	h := NewHistory(s.Capture, s.Restore)
	e := s.Create(0, 0, "box")
	b.ReportAllocs()
	b.ResetTimer()
	i := 0
	for n := 0; n < b.N; n++ {
		i++
		s.MoveTo(e.ID, float64(i), 0)
		h.AddState(fmt.Sprintf("move %d", i))
	}
}
