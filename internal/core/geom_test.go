package core

import (
	"math"
	"testing"
)

func TestVecLenUsesCellAspect(t *testing.T) {
	tests := []struct {
		name     string
		v        Vec
		expected float64
	}{
		{"horizontal", Vec{X: 3}, 3},
		{"vertical counts double", Vec{Y: 2}, 4},
		{"diagonal", Vec{X: 3, Y: 2}, 5},
		{"zero", Vec{}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.Len(); math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("Len() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestVecNorm(t *testing.T) {
	n := Vec{X: 0, Y: 5}.Norm()
	if math.Abs(n.Len()-1) > 1e-9 {
		t.Errorf("Norm().Len() = %v, expected 1", n.Len())
	}
	if n.Y != 0.5 {
		t.Errorf("Norm().Y = %v, expected 0.5", n.Y)
	}
	if (Vec{}).Norm() != (Vec{}) {
		t.Error("Norm() of zero vector should be zero")
	}
}

func TestVecArithmetic(t *testing.T) {
	a := Vec{X: 1, Y: 2}
	b := Vec{X: 3, Y: -1}
	if got := a.Add(b); got != (Vec{X: 4, Y: 1}) {
		t.Errorf("Add() = %+v", got)
	}
	if got := a.Sub(b); got != (Vec{X: -2, Y: 3}) {
		t.Errorf("Sub() = %+v", got)
	}
	if got := a.Scale(2); got != (Vec{X: 2, Y: 4}) {
		t.Errorf("Scale() = %+v", got)
	}
	if x, y := (Vec{X: 2.6, Y: 1.4}).Cell(); x != 3 || y != 1 {
		t.Errorf("Cell() = (%d, %d), expected (3, 1)", x, y)
	}
	if d := a.Dist(Vec{X: 1, Y: 0}); d != 4 {
		t.Errorf("Dist() = %v, expected 4", d)
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 15)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"inside", 15, 15, true},
		{"top-left corner", 10, 10, true},
		{"bottom-right edge (exclusive)", 30, 25, false},
		{"outside left", 5, 15, false},
		{"outside right", 35, 15, false},
		{"outside top", 15, 5, false},
		{"outside bottom", 15, 30, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := r.Contains(tc.x, tc.y)
			if result != tc.expected {
				t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, result, tc.expected)
			}
		})
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(5, 10, 20, 15)

	if r.Right() != 25 {
		t.Errorf("Right() = %d, expected 25", r.Right())
	}
	if r.Bottom() != 25 {
		t.Errorf("Bottom() = %d, expected 25", r.Bottom())
	}

	cx, cy := r.Center()
	if cx != 15 || cy != 17 {
		t.Errorf("Center() = (%d, %d), expected (15, 17)", cx, cy)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 10, 5},   // within range
		{-5, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
		{0, 0, 10, 0},   // at min
		{10, 0, 10, 10}, // at max
	}

	for _, tc := range tests {
		result := Clamp(tc.val, tc.min, tc.max)
		if result != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.min, tc.max, result, tc.expected)
		}
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, min, max, expected float64
	}{
		{5.5, 0.0, 10.0, 5.5},
		{-5.5, 0.0, 10.0, 0.0},
		{15.5, 0.0, 10.0, 10.0},
	}

	for _, tc := range tests {
		result := ClampF(tc.val, tc.min, tc.max)
		if result != tc.expected {
			t.Errorf("ClampF(%f, %f, %f) = %f, expected %f", tc.val, tc.min, tc.max, result, tc.expected)
		}
	}
}

func TestMinMax(t *testing.T) {
	if Min(5, 10) != 5 {
		t.Error("Min(5, 10) should be 5")
	}
	if Min(10, 5) != 5 {
		t.Error("Min(10, 5) should be 5")
	}
	if Max(5, 10) != 10 {
		t.Error("Max(5, 10) should be 10")
	}
	if Max(10, 5) != 10 {
		t.Error("Max(10, 5) should be 10")
	}
}

func TestAbs(t *testing.T) {
	if Abs(5) != 5 {
		t.Error("Abs(5) should be 5")
	}
	if Abs(-5) != 5 {
		t.Error("Abs(-5) should be 5")
	}
	if Abs(0) != 0 {
		t.Error("Abs(0) should be 0")
	}
}
