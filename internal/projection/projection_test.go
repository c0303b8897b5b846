package projection_test

import (
	"testing"

	"github.com/KamalSai3/KS-Events/internal/projection"
)

func TestAvailableSpots(t *testing.T) {
	cases := []struct {
		capacity   int
		registered int
		want       int
	}{
		{100, 0, 100},
		{100, 40, 60},
		{100, 100, 0},
		{100, 120, 0}, // overbooked rows never read negative
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := projection.AvailableSpots(c.capacity, c.registered); got != c.want {
			t.Errorf("AvailableSpots(%d, %d) = %d, want %d", c.capacity, c.registered, got, c.want)
		}
	}
}

func TestIsFull(t *testing.T) {
	if projection.IsFull(10, 9) {
		t.Error("Event with a spare spot must not be full")
	}
	if !projection.IsFull(10, 10) {
		t.Error("Event at capacity must be full")
	}
	if !projection.IsFull(10, 11) {
		t.Error("Overbooked event must be full")
	}
	if !projection.IsFull(0, 0) {
		t.Error("Zero-capacity event must always be full")
	}
}

func TestFormatPrice(t *testing.T) {
	if got := projection.FormatPrice(250.0); got != "₹250.00" {
		t.Errorf("Expected ₹250.00, got %q", got)
	}
	if got := projection.FormatPrice(99.5); got != "₹99.50" {
		t.Errorf("Expected ₹99.50, got %q", got)
	}
	if got := projection.FormatPrice(0); got != "Free" {
		t.Errorf("Expected Free for zero price, got %q", got)
	}
}

func TestFormatAmount(t *testing.T) {
	// Unlike prices, a zero paid amount still renders as currency.
	if got := projection.FormatAmount(0); got != "₹0.00" {
		t.Errorf("Expected ₹0.00, got %q", got)
	}
	if got := projection.FormatAmount(150.0); got != "₹150.00" {
		t.Errorf("Expected ₹150.00, got %q", got)
	}
}
