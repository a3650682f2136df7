package math

import "testing"

func TestSaturate(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{1.5, 1},
	}
	for _, tt := range tests {
		if got := Saturate(tt.in); got != tt.want {
			t.Errorf("Saturate(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := Clamp(7, 1, 5); got != 5 {
		t.Errorf("Clamp(7, 1, 5) = %d", got)
	}
}

func TestExtentsOf(t *testing.T) {
	e := ExtentsOf([]Vec3{NewVec3(1, -2, 3), NewVec3(-1, 2, 0)})
	want := Extents3D{Min: NewVec3(-1, -2, 0), Max: NewVec3(1, 2, 3)}
	if e != want {
		t.Errorf("ExtentsOf = %+v, want %+v", e, want)
	}
	if ExtentsOf(nil) != (Extents3D{}) {
		t.Error("empty input should give zero extents")
	}
}
