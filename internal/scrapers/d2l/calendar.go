package d2l

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"brightspace-helper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMaxUpcoming is how many upcoming items are shown per course.
const DefaultMaxUpcoming = 3

var calendarContainerSelectors = []string{
	`.d2l-datalist`,
	`.d2l-calendar-list, [data-calendar-list]`,
	`[role=list]`,
}

const (
	calendarRowSelector   = `.d2l-datalist-item, [role=listitem], li`
	calendarTitleSelector = `a, h1, h2, h3, h4, .d2l-textblock-strong`
)

var statusSuffixRegex = regexp.MustCompile(`(?i)\s*[-–—]\s*(available|due|availability ends)\s*$`)

var statusNames = map[string]Status{
	"available":         STATUS_AVAILABLE,
	"due":               STATUS_DUE,
	"availability ends": STATUS_AVAILABILITY_ENDS,
}

// splitStatus strips a trailing "- Due" style suffix off a raw calendar title.
func splitStatus(rawTitle string) (string, Status) {
	m := statusSuffixRegex.FindStringSubmatchIndex(rawTitle)
	if m == nil {
		return rawTitle, STATUS_EVENT
	}
	suffix := strings.ToLower(htmlutil.CollapseWhitespace(rawTitle[m[2]:m[3]]))
	return strings.TrimSpace(rawTitle[:m[0]]), statusNames[suffix]
}

var kindKeywords = []struct {
	keywords []string
	kind     Kind
}{
	{keywords: []string{"quiz"}, kind: KIND_QUIZ},
	{keywords: []string{"assignment", "dropbox"}, kind: KIND_ASSIGNMENT},
	{keywords: []string{"discussion"}, kind: KIND_DISCUSSION},
	{keywords: []string{"exam", "test"}, kind: KIND_EXAM},
}

func inferKind(title string) Kind {
	title = strings.ToLower(title)
	for _, k := range kindKeywords {
		for _, keyword := range k.keywords {
			if strings.Contains(title, keyword) {
				return k.kind
			}
		}
	}
	return KIND_EVENT
}

func rowTitle(row *goquery.Selection) string {
	title := htmlutil.Attr(row, "title")
	if title != "" {
		return title
	}
	titled := htmlutil.DeepFirst(row, "[title]")
	if titled.Length() > 0 {
		title = htmlutil.Attr(titled, "title")
		if title != "" {
			return title
		}
	}
	return htmlutil.Text(htmlutil.DeepFirst(row, calendarTitleSelector))
}

// rowDateText returns the first fragment of the row that looks like a date, skipping the
// fragment that is the title itself.
func rowDateText(row *goquery.Selection, rawTitle string) string {
	var dateText string
	htmlutil.DeepQueryAll(row, "*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := htmlutil.OwnText(s.Nodes[0])
		if text == "" || text == rawTitle {
			return true
		}
		if looksLikeDate(text) {
			dateText = text
			return false
		}
		return true
	})
	return dateText
}

func parseCalendarRow(row *goquery.Selection, now time.Time) (UpcomingItem, bool) {
	rawTitle := rowTitle(row)
	if rawTitle == "" {
		return UpcomingItem{}, false
	}
	title, status := splitStatus(rawTitle)

	item := UpcomingItem{
		Title:    title,
		DateText: rowDateText(row, rawTitle),
		Kind:     inferKind(title),
		Status:   status,
	}
	if item.DateText != "" {
		when, ok := parseLooseDate(item.DateText, now)
		if ok {
			item.When = &when
		}
	}
	return item, true
}

// ParseUpcoming reads the calendar list view of a course into at most maxUpcoming items that
// are not in the past, soonest first. Items whose date could not be parsed come last. A page
// without a list gives an empty result.
func ParseUpcoming(doc *goquery.Selection, now time.Time, maxUpcoming int) []UpcomingItem {
	if maxUpcoming <= 0 {
		maxUpcoming = DefaultMaxUpcoming
	}

	container := firstSelector(doc, calendarContainerSelectors)
	if container.Length() == 0 {
		return []UpcomingItem{}
	}
	rows := htmlutil.Outermost(htmlutil.DeepQueryAll(container, calendarRowSelector))

	items := []UpcomingItem{}
	rows.Each(func(_ int, row *goquery.Selection) {
		item, ok := parseCalendarRow(row, now)
		if !ok {
			return
		}
		if item.When != nil && item.When.Before(now) {
			return
		}
		items = append(items, item)
	})

	sort.SliceStable(items, func(i, j int) bool {
		return sortKey(items[i]) < sortKey(items[j])
	})
	if len(items) > maxUpcoming {
		items = items[:maxUpcoming]
	}
	return items
}

// undated items sort after every dated one
const undatedSortKey = int64(1<<63 - 1)

func sortKey(item UpcomingItem) int64 {
	if item.When == nil {
		return undatedSortKey
	}
	return item.When.UnixNano()
}

// firstSelector tries each selector in order and returns the first deep match.
func firstSelector(doc *goquery.Selection, selectors []string) *goquery.Selection {
	for _, selector := range selectors {
		found := htmlutil.DeepFirst(doc, selector)
		if found.Length() > 0 {
			return found
		}
	}
	return doc.FilterNodes()
}
