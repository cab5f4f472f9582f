package algo

import (
	"math"
	"testing"
)

func TestExtractFeatures_Delhi(t *testing.T) {
	fv := ExtractFeatures(28.6139, 77.2090)

	if fv[7] != 0.0 {
		t.Errorf("expected distance to Delhi to be 0, got %v", fv[7])
	}
	if fv[0] != 28.6139 || fv[1] != 77.2090 {
		t.Errorf("expected raw coordinates in the first two slots, got %v, %v", fv[0], fv[1])
	}
	if fv[4] != 28.6139*77.2090 {
		t.Errorf("expected lat*lon, got %v", fv[4])
	}
}

func TestExtractFeatures_Deterministic(t *testing.T) {
	a := ExtractFeatures(12.34567, -98.7654)
	b := ExtractFeatures(12.34567, -98.7654)
	for i := range a {
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			t.Fatalf("feature %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestExtractFeatures_Origin(t *testing.T) {
	fv := ExtractFeatures(0, 0)
	for i := 0; i < 7; i++ {
		if fv[i] != 0 {
			t.Errorf("expected polynomial feature %d to be 0, got %v", i, fv[i])
		}
	}
	want := math.Sqrt(19.0760*19.0760 + 72.8777*72.8777)
	if math.Abs(fv[8]-want) > 1e-12 {
		t.Errorf("expected distance to Mumbai %v, got %v", want, fv[8])
	}
}

func TestFeatureVector_HasNaN(t *testing.T) {
	if ExtractFeatures(10, 20).HasNaN() {
		t.Errorf("expected no NaN for finite input")
	}
	if !ExtractFeatures(math.NaN(), 20).HasNaN() {
		t.Errorf("expected NaN to propagate")
	}
}
