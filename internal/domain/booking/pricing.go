package booking

import (
	"fmt"
	"math"
	"time"
)

// ServiceFeeRate is the platform take. Guests pay it on top of the subtotal and
// the same rate is deducted from host payouts.
const ServiceFeeRate = 0.14

const serviceFeeBasisPoints = 1400

// MaxSubtotal bounds a stay's subtotal so the total and the host payout stay
// within int64.
const MaxSubtotal int64 = math.MaxInt64 / 2

// PriceQuote is the price breakdown for one stay, in the smallest currency unit.
type PriceQuote struct {
	Nights         int     `json:"nights"`
	PricePerNight  int64   `json:"price_per_night"`
	Subtotal       int64   `json:"subtotal"`
	ServiceFeeRate float64 `json:"service_fee_rate"`
	ServiceFee     int64   `json:"service_fee"`
	Total          int64   `json:"total"`
}

// ComputePrice prices a stay. Callers must reject ranges with no nights first.
func ComputePrice(pricePerNight int64, checkIn, checkOut time.Time) PriceQuote {
	nights := CountNights(checkIn, checkOut)
	subtotal := int64(nights) * pricePerNight
	fee := applyRate(subtotal)
	return PriceQuote{
		Nights:         nights,
		PricePerNight:  pricePerNight,
		Subtotal:       subtotal,
		ServiceFeeRate: ServiceFeeRate,
		ServiceFee:     fee,
		Total:          subtotal + fee,
	}
}

// Payout is a host's share of one booking.
type Payout struct {
	Total      int64 `json:"total"`
	Commission int64 `json:"commission"`
	Payout     int64 `json:"payout"`
}

// HostPayout computes commission from the guest total, not the subtotal, so
// the rate is applied on top of the fee already charged to the guest.
func HostPayout(total int64) Payout {
	commission := applyRate(total)
	return Payout{
		Total:      total,
		Commission: commission,
		Payout:     total - commission,
	}
}

// applyRate returns round-half-up(amount * 14%) using integer arithmetic.
// The amount is split on 10000 so the multiplication cannot overflow.
func applyRate(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	whole, rest := amount/10000, amount%10000
	return whole*serviceFeeBasisPoints + (rest*serviceFeeBasisPoints+5000)/10000
}

// PricingStrategy defines the interface for pricing a stay.
type PricingStrategy interface {
	Quote(pricePerNight int64, stay DateRange) (PriceQuote, error)
}

// StandardPricingStrategy applies the flat nightly rate plus service fee.
type StandardPricingStrategy struct{}

// NewStandardPricingStrategy creates a new StandardPricingStrategy.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{}
}

// Quote computes the price breakdown for stay.
func (s *StandardPricingStrategy) Quote(pricePerNight int64, stay DateRange) (PriceQuote, error) {
	if pricePerNight <= 0 {
		return PriceQuote{}, fmt.Errorf("price per night must be positive")
	}
	nights := stay.Nights()
	if nights <= 0 {
		return PriceQuote{}, ErrInvalidDates
	}
	if pricePerNight > MaxSubtotal/int64(nights) {
		return PriceQuote{}, ErrPriceOutOfRange
	}
	return ComputePrice(pricePerNight, stay.CheckIn, stay.CheckOut), nil
}
