// Package whatif projects a course percentage out of a grades model and hypothetical scores.
package whatif

import (
	"brightspace-helper/internal/scrapers/d2l"
)

// ItemOverride replaces the earned or possible points of one item, a nil field keeps the
// value from the model.
type ItemOverride struct {
	Earned   *float64 `json:"earned"`
	Possible *float64 `json:"possible"`
}

// Overrides are keyed by GradeItem.Id. They are merged with a model at computation time and
// never modify it.
type Overrides struct {
	Items map[string]ItemOverride `json:"items"`
	// BonusPoints is added to the numerator only.
	BonusPoints float64 `json:"bonusPoints"`
}

func (o Overrides) IsEmpty() bool {
	return len(o.Items) == 0 && o.BonusPoints == 0
}

// Set returns a copy of o with the override of id replaced.
func (o Overrides) Set(id string, override ItemOverride) Overrides {
	items := make(map[string]ItemOverride, len(o.Items)+1)
	for k, v := range o.Items {
		items[k] = v
	}
	items[id] = override
	return Overrides{Items: items, BonusPoints: o.BonusPoints}
}

type Result struct {
	Percent     float64 `json:"percent"`
	Numerator   float64 `json:"numerator"`
	Denominator float64 `json:"denominator"`
}

func effective(override *float64, original float64) float64 {
	if override != nil {
		return *override
	}
	return original
}

// Compute sums the earned and possible points of every regular item with its overrides
// applied. Bonus items are left out of both sums, exempt items count as 0/0 and
// BonusPoints only raises the numerator. An empty denominator gives 0%.
func Compute(model d2l.GradesModel, overrides Overrides) Result {
	var result Result
	for _, item := range model.Items {
		if item.IsBonus {
			continue
		}
		override := overrides.Items[item.Id]
		earned := effective(override.Earned, item.Earned)
		possible := effective(override.Possible, item.Possible)
		if item.IsExempt {
			earned, possible = 0, 0
		}
		result.Numerator += earned
		result.Denominator += possible
	}
	result.Numerator += overrides.BonusPoints

	if result.Denominator > 0 {
		result.Percent = 100 * result.Numerator / result.Denominator
	}
	return result
}
