package ephemeris

import (
	"math"
	"testing"
	"time"
)

func TestEpochAddRoundTrips(t *testing.T) {
	ref := NewEpoch(time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC))
	later := ref.Add(3600)

	// A float64 Julian Day near 2.49e6 resolves only about 4e-5 s.
	gotSec := (later.JulianDay() - ref.JulianDay()) * secondsPerDay
	if math.Abs(gotSec-3600) > 1e-4 {
		t.Fatalf("Add(3600): got %v seconds later, want 3600", gotSec)
	}
}

func TestRotationAngleStationary(t *testing.T) {
	ref := NewEpoch(time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC))
	got := RotationAngle(0, 1.25, ref, ref)
	if math.Abs(got-1.25) > 1e-9 {
		t.Fatalf("RotationAngle with zero period: got %v, want 1.25", got)
	}
}

func TestRotationAngleWrapsFullRevolution(t *testing.T) {
	ref := NewEpoch(time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC))
	const period = 86400.0 // one day
	at := ref.Add(period)  // exactly one full revolution later

	got := RotationAngle(period, 0, ref, at)
	if math.Abs(float64(got)) > 1e-6 && math.Abs(float64(got)-2*math.Pi) > 1e-6 {
		t.Fatalf("RotationAngle after one full period: got %v, want ~0", float64(got))
	}
}
