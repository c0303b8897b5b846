// Package projection computes the derived read-time values: spot
// availability and currency formatting. Nothing here is ever stored,
// so the values are always consistent with the current registration
// count.
package projection

import "fmt"

// AvailableSpots is capacity minus the current registration count,
// floored at zero.
func AvailableSpots(capacity, registered int) int {
	spots := capacity - registered
	if spots < 0 {
		return 0
	}
	return spots
}

// IsFull reports whether the event has no spots left.
func IsFull(capacity, registered int) bool {
	return capacity-registered <= 0
}

// FormatPrice renders an event price as "₹<amount>" with two decimal
// places, or the literal "Free" for zero.
func FormatPrice(price float64) string {
	if price > 0 {
		return fmt.Sprintf("₹%.2f", price)
	}
	return "Free"
}

// FormatAmount renders a paid amount; unlike FormatPrice a zero amount
// still renders as currency.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("₹%.2f", amount)
}
