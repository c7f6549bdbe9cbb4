package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64 // meters
		tolerance              float64
	}{
		{"same point", 37.7749, -122.4194, 37.7749, -122.4194, 0, 1},
		{"sf to la", 37.7749, -122.4194, 34.0522, -118.2437, 559000, 5000},
		{"one degree latitude", 0, 0, 1, 0, 111195, 100},
		{"across the park", 37.7694, -122.4862, 37.7734, -122.4594, 2392, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Distance() = %.0f m, want %.0f ± %.0f m", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	d1 := Distance(37.7749, -122.4194, 34.0522, -118.2437)
	d2 := Distance(34.0522, -118.2437, 37.7749, -122.4194)
	if math.Abs(d1-d2) > 0.001 {
		t.Errorf("distance not symmetric: %.3f vs %.3f", d1, d2)
	}
}

func TestClampRadius(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, DefaultRadiusMeters},
		{-10, DefaultRadiusMeters},
		{500, MinRadiusMeters},
		{1000, 1000},
		{5000, 5000},
		{25000, 25000},
		{90000, MaxRadiusMeters},
	}

	for _, tt := range tests {
		if got := ClampRadius(tt.in); got != tt.want {
			t.Errorf("ClampRadius(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
