package whatif

import (
	"fmt"
	"strconv"
	"strings"

	"brightspace-helper/internal/scrapers/d2l"
	"brightspace-helper/lib/textutil"

	"github.com/antzucaro/matchr"
)

// MinSimilarity is the lowest Jaro-Winkler similarity a typed name may have to an item name
// to still refer to it.
const MinSimilarity = 0.8

// ResolveItem finds the item a user typed the name of: an exact id first, then the most
// similar item name.
func ResolveItem(model d2l.GradesModel, name string) (d2l.GradeItem, bool) {
	key := textutil.NormalizeKey(name)
	if key == "" {
		return d2l.GradeItem{}, false
	}
	for _, item := range model.Items {
		if item.Id == key {
			return item, true
		}
	}

	best := -1
	bestSimilarity := 0.0
	for i, item := range model.Items {
		similarity := matchr.JaroWinkler(key, item.Id, false)
		if similarity > bestSimilarity {
			best = i
			bestSimilarity = similarity
		}
	}
	if best < 0 || bestSimilarity < MinSimilarity {
		return d2l.GradeItem{}, false
	}
	return model.Items[best], true
}

// Assignment is a single "name=earned/possible" override typed on the command line.
type Assignment struct {
	Name     string
	Override ItemOverride
}

func parseOptionalNumber(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ParseAssignment reads "Quiz 1=9/10", "Quiz 1=9" (possible kept) or "Quiz 1=-/20" (earned
// kept).
func ParseAssignment(text string) (Assignment, error) {
	name, value, found := strings.Cut(text, "=")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		return Assignment{}, fmt.Errorf("expected <item>=<earned>[/<possible>], got %q", text)
	}

	earnedText, possibleText, _ := strings.Cut(value, "/")
	earned, err := parseOptionalNumber(earnedText)
	if err != nil {
		return Assignment{}, fmt.Errorf("parse earned points of %q: %w", name, err)
	}
	possible, err := parseOptionalNumber(possibleText)
	if err != nil {
		return Assignment{}, fmt.Errorf("parse possible points of %q: %w", name, err)
	}
	if earned == nil && possible == nil {
		return Assignment{}, fmt.Errorf("no points given for %q", name)
	}

	return Assignment{
		Name:     name,
		Override: ItemOverride{Earned: earned, Possible: possible},
	}, nil
}

// Apply resolves every assignment against model and adds it to overrides.
func Apply(model d2l.GradesModel, overrides Overrides, assignments []Assignment) (Overrides, error) {
	for _, a := range assignments {
		item, ok := ResolveItem(model, a.Name)
		if !ok {
			return overrides, fmt.Errorf("no grade item matches %q", a.Name)
		}
		overrides = overrides.Set(item.Id, a.Override)
	}
	return overrides, nil
}
