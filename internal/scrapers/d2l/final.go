package d2l

import (
	"strings"

	"brightspace-helper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// NotPosted is the grade shown when a page has no percentage anywhere.
const NotPosted = "Not posted"

const headingSelector = `h1, h2, h3, .vui-heading-2, .vui-heading-3`

// finalLabels are checked in order, the first label with a grade next to it wins.
var finalLabels = []string{
	"final calculated grade",
	"final adjusted grade",
	"current grade",
}

func headingContext(h *goquery.Selection) string {
	parts := []string{
		htmlutil.Text(h),
		htmlutil.Text(h.Next()),
		htmlutil.Text(h.Parent()),
	}
	return strings.Join(parts, " ")
}

// ParseFinalGrade reads the final grade of a grades page, ex. "87.5% (B+)".
func ParseFinalGrade(doc *goquery.Selection) string {
	headings := htmlutil.DeepQueryAll(doc, headingSelector)
	for _, label := range finalLabels {
		grade := ""
		headings.EachWithBreak(func(_ int, h *goquery.Selection) bool {
			if strings.ToLower(htmlutil.Text(h)) != label {
				return true
			}
			found, ok := ExtractPercentGrade(headingContext(h))
			if ok {
				grade = found
			}
			return !ok
		})
		if grade != "" {
			return grade
		}
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc
	}
	grade, ok := ExtractPercentGrade(htmlutil.Text(body))
	if !ok {
		return NotPosted
	}
	return grade
}
