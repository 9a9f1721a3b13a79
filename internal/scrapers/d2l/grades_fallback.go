package d2l

import (
	"regexp"
	"strings"

	"brightspace-helper/lib/htmlutil"
	"brightspace-helper/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// explicit grade widgets come before generic containers
var looseSelectors = []string{
	`d2l-grade-item, d2l-grades-item, d2l-grade-result, [class*=grade], [data-testid*=grade], [data-automation-id*=grade]`,
	`tr, li, div, span`,
}

const looseNameSelector = `[class*=name], [class*=title], th, h3, h4, strong, label, a`

var looseKeywordRegex = regexp.MustCompile(`(?i)not graded|out of|points`)

var gradeFragmentRegexes = []*regexp.Regexp{
	fractionRegex,
	ungradedRegex,
	outOfRegex,
	percentRegex,
	letterWithNumRegex,
	looseKeywordRegex,
}

var summaryRows = []string{
	"finalcalculatedgrade",
	"finaladjustedgrade",
}

func hasGradeFragment(text string) bool {
	for _, r := range gradeFragmentRegexes {
		if r.MatchString(text) {
			return true
		}
	}
	return false
}

// leadingName is the text before the first grade fragment.
func leadingName(text string) string {
	end := len(text)
	for _, r := range gradeFragmentRegexes {
		loc := r.FindStringIndex(text)
		if loc != nil && loc[0] < end {
			end = loc[0]
		}
	}
	name := strings.TrimSpace(text[:end])
	return strings.TrimRight(name, ":")
}

// looseName returns the cleaned name of a loose candidate and the text left once the name
// is taken out, which is where its points are read from.
func looseName(s *goquery.Selection, text string) (name string, rest string) {
	htmlutil.DeepQueryAll(s, looseNameSelector).EachWithBreak(func(_ int, n *goquery.Selection) bool {
		candidate := htmlutil.Text(n)
		if candidate == "" || looksLikeBareGrade(candidate) || isExistingGrade(candidate) {
			return true
		}
		name = candidate
		return false
	})
	if name != "" {
		rest = strings.Replace(text, name, " ", 1)
	} else {
		name = leadingName(text)
		rest = text[len(name):]
	}
	return cleanName(name), rest
}

func isSummaryRow(text, name string) bool {
	if textutil.MatchName(text, summaryRows) {
		return true
	}
	key := textutil.NormalizeKey(name)
	return key == "total" || key == "totals"
}

func looseItem(s *goquery.Selection) (GradeItem, bool) {
	text := htmlutil.Text(s)
	if text == "" || !hasGradeFragment(text) {
		return GradeItem{}, false
	}
	name, rest := looseName(s, text)
	if name == "" || isSummaryRow(text, name) {
		return GradeItem{}, false
	}
	points, ok := ExtractFraction(rest)
	if !ok {
		return GradeItem{}, false
	}

	lower := strings.ToLower(text)
	return GradeItem{
		Id:       textutil.NormalizeKey(name),
		Name:     name,
		Earned:   points.Earned,
		Possible: points.Possible,
		IsBonus:  strings.Contains(lower, "bonus"),
		IsExempt: strings.Contains(lower, "exempt"),
	}, true
}

type looseCandidate struct {
	node *html.Node
	item GradeItem
}

// looseScan reads grade items out of any element that looks like one. When a qualifying
// element contains another, only the innermost one is used, so page wrappers never swallow
// the rows inside them.
func looseScan(doc *goquery.Selection) []GradeItem {
	var candidates []looseCandidate
	qualified := map[*html.Node]bool{}
	for _, selector := range looseSelectors {
		htmlutil.DeepQueryAll(doc, selector).Each(func(_ int, s *goquery.Selection) {
			node := s.Get(0)
			if qualified[node] {
				return
			}
			item, ok := looseItem(s)
			if !ok {
				return
			}
			qualified[node] = true
			candidates = append(candidates, looseCandidate{node: node, item: item})
		})
	}

	// parents of qualifying nodes do not count themselves
	enclosing := map[*html.Node]bool{}
	for _, c := range candidates {
		for p := c.node.Parent; p != nil; p = p.Parent {
			if enclosing[p] {
				break
			}
			enclosing[p] = true
		}
	}

	var items []GradeItem
	for _, c := range candidates {
		if enclosing[c.node] {
			continue
		}
		items = append(items, c.item)
	}
	return dedupe(items)
}
