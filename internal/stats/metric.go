package stats

import (
	"fmt"
	"strings"
)

// Metric is a chartable box score column.
type Metric string

const (
	MetricPoints              Metric = ColPoints
	MetricRebounds            Metric = ColRebounds
	MetricAssists             Metric = ColAssists
	MetricSteals              Metric = ColSteals
	MetricBlocks              Metric = ColBlocks
	MetricPlusMinus           Metric = ColPlusMinus
	MetricTurnovers           Metric = ColTurnovers
	MetricMadeFieldGoal       Metric = ColMadeFieldGoal
	MetricAttemptedFieldGoal  Metric = ColAttemptedFieldGoal
	MetricFieldGoalPercent    Metric = ColFieldGoalPercent
	MetricAttemptedThreePoint Metric = ColAttemptedThreePoint
	MetricMadeThreePoint      Metric = ColMadeThreePoint
	MetricThreePointPercent   Metric = ColThreePointPercent
	MetricAttemptedFreeThrow  Metric = ColAttemptedFreeThrow
	MetricMadeFreeThrow       Metric = ColMadeFreeThrow
	MetricFreeThrowPercent    Metric = ColFreeThrowPercent
	MetricAttemptedTwoPoint   Metric = ColAttemptedTwoPoint
	MetricMadeTwoPoint        Metric = ColMadeTwoPoint
	MetricTwoPointPercent     Metric = ColTwoPointPercent
)

var metricLabels = map[Metric]string{
	MetricPoints:              "Points",
	MetricRebounds:            "Rebounds",
	MetricAssists:             "Assists",
	MetricSteals:              "Steals",
	MetricBlocks:              "Blocks",
	MetricPlusMinus:           "Plus/Minus",
	MetricTurnovers:           "Turnovers",
	MetricMadeFieldGoal:       "FG Made",
	MetricAttemptedFieldGoal:  "FG Attempted",
	MetricFieldGoalPercent:    "Field Goal %",
	MetricAttemptedThreePoint: "3P Attempted",
	MetricMadeThreePoint:      "3P Made",
	MetricThreePointPercent:   "Three Point %",
	MetricAttemptedFreeThrow:  "FT Attempted",
	MetricMadeFreeThrow:       "FT Made",
	MetricFreeThrowPercent:    "Free Throw %",
	MetricAttemptedTwoPoint:   "2P Attempted",
	MetricMadeTwoPoint:        "2P Made",
	MetricTwoPointPercent:     "Two Point %",
}

// metricOrder is the selector order.
var metricOrder = []Metric{
	MetricPoints, MetricRebounds, MetricAssists, MetricSteals, MetricBlocks,
	MetricPlusMinus, MetricTurnovers,
	MetricMadeFieldGoal, MetricAttemptedFieldGoal, MetricFieldGoalPercent,
	MetricAttemptedThreePoint, MetricMadeThreePoint, MetricThreePointPercent,
	MetricAttemptedFreeThrow, MetricMadeFreeThrow, MetricFreeThrowPercent,
	MetricAttemptedTwoPoint, MetricMadeTwoPoint, MetricTwoPointPercent,
}

// Metrics lists the selectable metrics in display order.
func Metrics() []Metric {
	return append([]Metric(nil), metricOrder...)
}

// ParseMetric accepts a metric key. The short percentage aliases
// ("fg_pct", "3p_pct", ...) are accepted too.
func ParseMetric(s string) (Metric, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "fg_pct":
		return MetricFieldGoalPercent, nil
	case "2p_pct", "two_p_pct":
		return MetricTwoPointPercent, nil
	case "3p_pct", "three_p_pct":
		return MetricThreePointPercent, nil
	case "ft_pct":
		return MetricFreeThrowPercent, nil
	}
	m := Metric(key)
	if _, ok := metricLabels[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
	return m, nil
}

// Label is the display name.
func (m Metric) Label() string {
	if l, ok := metricLabels[m]; ok {
		return l
	}
	return strings.ToUpper(string(m))
}

// IsPercentage reports whether the metric is a ratio in [0,1].
func (m Metric) IsPercentage() bool {
	return IsPercentColumn(string(m))
}

// Value reads the metric off a row; null when the row has no value.
func (m Metric) Value(r *BoxScoreRow) *float64 {
	if f, ok := percentFields[string(m)]; ok {
		return *f(r)
	}
	if m == MetricTwoPointPercent {
		return r.TwoPointPercent
	}
	if v := intValue(r, string(m)); v != nil {
		return floatPtr(float64(*v))
	}
	return nil
}
