package stats

import (
	"fmt"
	"math"
)

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// PercentPoints converts a [0,1] ratio to percentage points with one
// decimal place. Null stays null.
func PercentPoints(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return floatPtr(Round(*v*100, 1))
}

// FormatPercent renders a ratio as "45.5%"; null renders empty.
func FormatPercent(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

// FormatClock renders seconds as "M:SS".
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
