// Package bedtime converts 12-hour clock readings into the 24-hour decimal
// bedtime the dataset's Bedtime column is encoded in.
package bedtime

import (
	"fmt"
	"math"
	"strings"
)

type Period string

const (
	AM Period = "AM"
	PM Period = "PM"
)

func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToUpper(strings.TrimSpace(s))) {
	case AM:
		return AM, nil
	case PM:
		return PM, nil
	default:
		return "", fmt.Errorf("invalid period %q: must be AM or PM", s)
	}
}

// Normalize maps hour in [1, 12] and a period to a bedtime in [0, 24).
//
// 12 AM maps to 0 (midnight). 12 PM is not rewritten and stays 12.
func Normalize(hour float64, period Period) (float64, error) {
	if math.IsNaN(hour) || hour < 1 || hour > 12 {
		return 0, fmt.Errorf("hour %v out of range [1, 12]", hour)
	}

	switch period {
	case PM:
		if hour < 12 {
			return hour + 12, nil
		}
		return hour, nil
	case AM:
		if hour == 12 {
			return 0, nil
		}
		return hour, nil
	default:
		return 0, fmt.Errorf("invalid period %q: must be AM or PM", period)
	}
}

// Format renders a 24-hour decimal bedtime as HH:MM.
func Format(bedtime float64) string {
	minutes := int(math.Round(bedtime * 60))
	minutes = ((minutes % (24 * 60)) + 24*60) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
