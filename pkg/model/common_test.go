package model

import (
	"testing"
	"time"
)

func TestNewBaseModel(t *testing.T) {
	base := NewBaseModel()

	if base.ID.String() == "" {
		t.Error("ID should not be empty")
	}
	if base.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
	if base.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should not be zero")
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC)
	got := DateOnly(in)

	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Errorf("DateOnly() = %v, expected midnight", got)
	}
	if got.Format(DateLayout) != "2026-03-14" {
		t.Errorf("DateOnly() date = %s, expected 2026-03-14", got.Format(DateLayout))
	}
}

func TestDateOnly_KeepsLocalDate(t *testing.T) {
	newYork := time.FixedZone("EDT", -4*3600)
	in := time.Date(2026, 6, 1, 21, 0, 0, 0, newYork)

	if got := DateOnly(in).Format(DateLayout); got != "2026-06-01" {
		t.Errorf("DateOnly() date = %s, expected 2026-06-01", got)
	}

	tokyo := time.FixedZone("JST", 9*3600)
	early := time.Date(2026, 6, 2, 6, 0, 0, 0, tokyo)
	if got := DateOnly(early).Format(DateLayout); got != "2026-06-02" {
		t.Errorf("DateOnly() date = %s, expected 2026-06-02", got)
	}
}
