package utils

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	late := time.Date(2026, 1, 2, 23, 30, 45, 0, msk)

	got := StartOfDay(late)
	want := time.Date(2026, 1, 2, 0, 0, 0, 0, msk)
	if !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}
	if got.Location() != msk {
		t.Errorf("location = %v, want MSK", got.Location())
	}

	// Truncate по UTC дал бы 03:00 местного и потерял бы события до трёх
	// часов ночи.
	truncated := late.Truncate(24 * time.Hour)
	if truncated.Equal(want) {
		t.Error("expected Truncate to disagree with local midnight in MSK")
	}
}
