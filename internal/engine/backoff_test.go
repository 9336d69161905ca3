package engine

import "testing"

func TestComputeBackoffSeconds_ZeroBaseDelay(t *testing.T) {
	if d := computeBackoffSeconds(0, 1, defaultBackoffCapSeconds); d != 0 {
		t.Fatalf("expected 0 delay for zero base, got %f", d)
	}
}

func TestComputeBackoffSeconds_WithinRaw(t *testing.T) {
	cases := []struct {
		base    float64
		attempt int
		rawMax  float64
	}{
		{1, 1, 1},
		{1, 2, 2},
		{1, 3, 4},
		{5, 4, defaultBackoffCapSeconds}, // 5*8=40, capped at 30
	}
	for _, c := range cases {
		for i := 0; i < 50; i++ {
			d := computeBackoffSeconds(c.base, c.attempt, defaultBackoffCapSeconds)
			if d < 0 || d > c.rawMax {
				t.Fatalf("base=%f attempt=%d: delay %f out of [0,%f]", c.base, c.attempt, d, c.rawMax)
			}
		}
	}
}

func TestComputeBackoffSeconds_NeverExceedsCap(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := computeBackoffSeconds(100, 10, defaultBackoffCapSeconds)
		if d > defaultBackoffCapSeconds {
			t.Fatalf("delay %f exceeds cap %f", d, defaultBackoffCapSeconds)
		}
	}
}

func TestComputeBackoffSeconds_CustomCap(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := computeBackoffSeconds(100, 10, 5)
		if d > 5 {
			t.Fatalf("delay %f exceeds custom cap 5", d)
		}
	}
}
