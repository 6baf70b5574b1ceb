package format

import (
	"errors"
	"testing"
	"time"
)

func TestFmtRupeesIndianGrouping(t *testing.T) {
	cases := map[int64]string{
		0:        "₹0",
		85:       "₹85",
		1200:     "₹1,200",
		125000:   "₹1,25,000",
		12345678: "₹1,23,45,678",
		-899:     "-₹899",
	}
	for in, want := range cases {
		if got := FmtRupees(in); got != want {
			t.Fatalf("FmtRupees(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRupees(t *testing.T) {
	got, err := ParseRupees("₹1,200")
	if err != nil || got != 1200 {
		t.Fatalf("ParseRupees = %d, %v", got, err)
	}
	if got, err := ParseRupees(" 125 "); err != nil || got != 125 {
		t.Fatalf("ParseRupees plain = %d, %v", got, err)
	}
	for _, bad := range []string{"", "₹", "free", "₹-5"} {
		if _, err := ParseRupees(bad); !errors.Is(err, ErrInvalidPrice) {
			t.Fatalf("ParseRupees(%q) expected ErrInvalidPrice, got %v", bad, err)
		}
	}
}

func TestStarsUsesFloor(t *testing.T) {
	stars := Stars(4.8)
	if len(stars) != MaxStars {
		t.Fatalf("expected %d slots, got %d", MaxStars, len(stars))
	}
	filled := 0
	for _, s := range stars {
		if s {
			filled++
		}
	}
	if filled != 4 {
		t.Fatalf("expected 4 filled stars for 4.8, got %d", filled)
	}
	if FilledStars(5.0) != 5 || FilledStars(0.9) != 0 || FilledStars(7) != 5 || FilledStars(-1) != 0 {
		t.Fatalf("unexpected clamp behaviour")
	}
}

func TestDiscountPercent(t *testing.T) {
	if got := DiscountPercent(180, 125); got != 31 {
		t.Fatalf("DiscountPercent(180,125) = %d", got)
	}
	if got := DiscountPercent(100, 100); got != 0 {
		t.Fatalf("no saving should be 0, got %d", got)
	}
}

func TestFmtRatingAndDate(t *testing.T) {
	if FmtRating(5) != "5.0" || FmtRating(4.75) != "4.8" {
		t.Fatalf("unexpected rating format")
	}
	if got := FmtDate(time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)); got != "Nov 5, 2025" {
		t.Fatalf("FmtDate = %q", got)
	}
	if FmtDate(time.Time{}) != "" {
		t.Fatalf("zero date should be empty")
	}
}
