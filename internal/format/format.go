package format

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPrice is returned when a display price cannot be read back into rupees.
var ErrInvalidPrice = errors.New("format: invalid price")

// MaxStars is the number of star slots rendered for a rating.
const MaxStars = 5

// FmtRupees formats whole rupees using Indian digit grouping.
// Example: FmtRupees(125000) => "₹1,25,000"
func FmtRupees(amount int64) string {
	if amount < 0 {
		return "-₹" + indianGroup(-amount)
	}
	return "₹" + indianGroup(amount)
}

// indianGroup groups the last three digits, then pairs (12,34,567).
func indianGroup(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

// ParseRupees reads a display price such as "₹1,200" or "1200" into whole rupees.
func ParseRupees(display string) (int64, error) {
	s := strings.TrimSpace(display)
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimPrefix(s, "Rs.")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, display)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, display)
	}
	return n, nil
}

// DiscountPercent returns the rounded saving of price against original, or 0
// when there is no saving.
func DiscountPercent(original, price int64) int {
	if original <= 0 || price >= original {
		return 0
	}
	return int(math.Round(float64(original-price) / float64(original) * 100))
}

// FilledStars is floor(rating) clamped to [0, MaxStars].
func FilledStars(rating float64) int {
	n := int(math.Floor(rating))
	if n < 0 {
		return 0
	}
	if n > MaxStars {
		return MaxStars
	}
	return n
}

// Stars returns MaxStars slots; slot i is filled when i < floor(rating).
func Stars(rating float64) []bool {
	filled := FilledStars(rating)
	out := make([]bool, MaxStars)
	for i := range out {
		out[i] = i < filled
	}
	return out
}

// FmtRating renders a rating with one decimal, e.g. 5 => "5.0".
func FmtRating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', 1, 64)
}

// FmtDate formats time in the short form used on the site.
func FmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}
