package booking

import (
	"math"
	"time"

	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

// DateLayout is the wire format for stay dates.
const DateLayout = "2006-01-02"

// MaxStayNights is the longest bookable stay.
const MaxStayNights = 365

// DateRange is a stay from check-in to check-out. Check-out is exclusive for
// nights but inclusive for conflict detection.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewDateRange builds a range normalized to UTC calendar days. Check-out must
// be strictly after check-in and the stay at most MaxStayNights long.
func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
	r := DateRange{CheckIn: normalizeDate(checkIn), CheckOut: normalizeDate(checkOut)}
	if !r.CheckOut.After(r.CheckIn) {
		return DateRange{}, ErrInvalidDates
	}
	if r.Nights() > MaxStayNights {
		return DateRange{}, ErrStayTooLong
	}
	return r, nil
}

// ParseDateRange parses two YYYY-MM-DD strings into a DateRange.
func ParseDateRange(checkIn, checkOut string) (DateRange, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return DateRange{}, domain.NewValidationError("check-in must be a date in YYYY-MM-DD format")
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return DateRange{}, domain.NewValidationError("check-out must be a date in YYYY-MM-DD format")
	}
	return NewDateRange(in, out)
}

// Nights returns the number of calendar nights, rounding partial days up.
func (r DateRange) Nights() int {
	return CountNights(r.CheckIn, r.CheckOut)
}

// ConflictsWith reports whether two ranges touch or overlap. A check-out on
// the same day as the other range's check-in counts as a conflict.
func (r DateRange) ConflictsWith(other DateRange) bool {
	return !other.CheckOut.Before(r.CheckIn) && !other.CheckIn.After(r.CheckOut)
}

// CountNights returns ceil(days(checkOut - checkIn)).
func CountNights(checkIn, checkOut time.Time) int {
	hours := checkOut.Sub(checkIn).Hours()
	return int(math.Ceil(hours / 24))
}

func normalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
