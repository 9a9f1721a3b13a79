package d2l

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Fraction is an earned/possible point pair.
type Fraction struct {
	Earned   float64
	Possible float64
}

// matcher is one tier of a heuristic cascade, tiers run in order and the first success wins.
type matcher[In, Out any] func(In) (Out, bool)

func firstMatch[In, Out any](in In, cascade []matcher[In, Out]) (Out, bool) {
	for _, m := range cascade {
		out, ok := m(in)
		if ok {
			return out, true
		}
	}
	var zero Out
	return zero, false
}

// number accepts "1,250" style thousands groups, parseNumber drops the commas.
const number = `(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`

// a fraction may not start or end inside a larger number, "1,0000 / 5" is not 0/5
const (
	numberStart = `(?:^|[^\d,.])`
	numberEnd   = `(?:$|[^\d,]|,\D)`
)

var (
	percentGradeRegex = regexp.MustCompile(`(\d{1,3}(?:\.\d{1,2})?)\s*%`)
	letterGradeRegex  = regexp.MustCompile(`(?:^|[^A-Za-z0-9])([A-F][+-]?)(?:[^A-Za-z0-9+-]|$)`)

	fractionRegex       = regexp.MustCompile(numberStart + number + `\s*/\s*` + number + numberEnd)
	ungradedRegex       = regexp.MustCompile(`-\s*/\s*` + number + numberEnd)
	outOfRegex          = regexp.MustCompile(`(?i)\bout\s+of\s+` + number)
	percentRegex        = regexp.MustCompile(number + `\s*%`)
	letterWithNumRegex  = regexp.MustCompile(`(?:^|[^A-Za-z0-9])[A-F][+-]?\s*\(\s*` + number + `\s*%?\s*\)`)
	bareUngradedPercent = regexp.MustCompile(`^-\s*%$`)
	bareUngradedFrac    = regexp.MustCompile(`^-\s*/\s*\d`)
)

// letterWindow is how far around a percentage a letter grade may sit to belong to it.
const letterWindow = 20

// ExtractPercentGrade finds the first percentage in text and, if a letter grade is close by,
// appends it: "87.5% (B+)". ok is false when there is no percentage at all.
func ExtractPercentGrade(text string) (string, bool) {
	loc := percentGradeRegex.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", false
	}
	value := text[loc[2]:loc[3]]

	start := max(0, loc[0]-letterWindow)
	end := min(len(text), loc[1]+letterWindow)
	letter := letterGradeRegex.FindStringSubmatch(text[start:end])
	if letter != nil {
		return fmt.Sprintf("%s%% (%s)", value, letter[1]), true
	}
	return value + "%", true
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func matchFraction(text string) (Fraction, bool) {
	m := fractionRegex.FindStringSubmatch(text)
	if m == nil {
		return Fraction{}, false
	}
	earned, ok1 := parseNumber(m[1])
	possible, ok2 := parseNumber(m[2])
	return Fraction{Earned: earned, Possible: possible}, ok1 && ok2
}

// earnedZero builds a matcher for patterns whose only capture is the possible points.
func earnedZero(r *regexp.Regexp) matcher[string, Fraction] {
	return func(text string) (Fraction, bool) {
		m := r.FindStringSubmatch(text)
		if m == nil {
			return Fraction{}, false
		}
		possible, ok := parseNumber(m[1])
		return Fraction{Possible: possible}, ok
	}
}

// outOfHundred builds a matcher for patterns whose only capture is a score out of 100.
func outOfHundred(r *regexp.Regexp) matcher[string, Fraction] {
	return func(text string) (Fraction, bool) {
		m := r.FindStringSubmatch(text)
		if m == nil {
			return Fraction{}, false
		}
		earned, ok := parseNumber(m[1])
		return Fraction{Earned: earned, Possible: 100}, ok
	}
}

var (
	matchUngraded      = earnedZero(ungradedRegex)
	matchOutOf         = earnedZero(outOfRegex)
	matchPercent       = outOfHundred(percentRegex)
	matchLetterWithNum = outOfHundred(letterWithNumRegex)
)

var fractionCascade = []matcher[string, Fraction]{
	matchFraction,
	matchUngraded,
	matchOutOf,
	matchPercent,
	matchLetterWithNum,
}

// ExtractFraction reads earned/possible points out of text. In order of priority:
// "8/10", "- / 40" (ungraded), "out of 40" (ungraded), "85%" and "B+ (87)" (out of 100).
func ExtractFraction(text string) (Fraction, bool) {
	return firstMatch(text, fractionCascade)
}

// isExistingGrade is true for text carrying an actual score: a fraction, a percentage or a
// letter with a number.
func isExistingGrade(text string) bool {
	return fractionRegex.MatchString(text) ||
		percentRegex.MatchString(text) ||
		letterWithNumRegex.MatchString(text)
}

func isUngraded(text string) bool {
	return ungradedRegex.MatchString(text)
}

// looksLikeBareGrade is true for cells that only hold an empty grade ("- / 10", "- %").
func looksLikeBareGrade(text string) bool {
	return bareUngradedFrac.MatchString(text) || bareUngradedPercent.MatchString(text)
}
