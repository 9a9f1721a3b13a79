package d2l

import (
	"regexp"
	"strconv"
	"strings"

	"brightspace-helper/lib/htmlutil"
	"brightspace-helper/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBonusPossible is the value given to a bonus row that only shows "-" for its points.
// The page does not say how much the bonus is worth, 10 is an assumption.
const DefaultBonusPossible = 10

const (
	tableSelector = `table, [role=grid], [role=table], [role=treegrid]`
	cellSelector  = `[role=cell], [role=gridcell], [role=rowheader], td, th`
	// rows of a header, including the ones d2l marks with its own classes
	headerRowSelector = `.d_gh, [data-header-row], [data-header]`
	headerCellMarkers = `th[scope=col], .d_hch, [role=columnheader]`
	attributeLabels   = `[aria-label], [title]`
)

// each tier is more permissive than the last, the first tier that finds anything is used
var headerSelectors = []string{
	`[role=columnheader]`,
	`th:not([scope=row]), .d_hch, .d2l-table-cell-header`,
	`[class*=header], [class*=hch]`,
}

// category headings are rows that group items, they only count when they carry a score
var categoryHeadings = map[string]bool{
	"quizzes":             true,
	"projects":            true,
	"attendance":          true,
	"discussions":         true,
	"written_discussions": true,
	"oral_discussions":    true,
	"midterm exam":        true,
}

var (
	nameFromRowTextRegex = regexp.MustCompile(`^(.+?)\s*-\s*/\s*\d`)
	nameSuffixRegex      = regexp.MustCompile(`(?i)\s*[-–—]\s*(?:score|grade)\s*$`)
	trailingDashRegex    = regexp.MustCompile(`\s*[-–—]+\s*$`)
)

type gradeTable struct {
	sel *goquery.Selection
	// pointsColumn is the column the "Points" header sits in, -1 when unknown
	pointsColumn int
}

type gradeCell struct {
	sel    *goquery.Selection
	text   string
	column int
}

type gradeRow struct {
	sel          *goquery.Selection
	cells        []gradeCell
	text         string
	lower        string
	pointsColumn int
}

func (r gradeRow) isBonus() bool {
	return strings.Contains(r.lower, "bonus")
}

func (r gradeRow) isExempt() bool {
	return strings.Contains(r.lower, "exempt")
}

// cascade returns the deep matches of the first selector that matches anything accepted by
// keep (nil keeps everything).
func cascade(sel *goquery.Selection, selectors []string, keep func(s *goquery.Selection) bool) *goquery.Selection {
	for _, selector := range selectors {
		found := htmlutil.DeepQueryAll(sel, selector)
		if keep != nil {
			found = found.FilterFunction(func(_ int, s *goquery.Selection) bool {
				return keep(s)
			})
		}
		if found.Length() > 0 {
			return found
		}
	}
	return sel.FilterNodes()
}

func colspan(s *goquery.Selection) int {
	n, err := strconv.Atoi(s.AttrOr("colspan", "1"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func tableHeaders(table *goquery.Selection) *goquery.Selection {
	return cascade(table, headerSelectors, nil)
}

// scoreTable reports whether table has both a "Grade Item" and a "Points" header and, if so,
// the column of the latter.
func scoreTable(headers *goquery.Selection) (authoritative bool, pointsColumn int) {
	hasGradeItem := false
	pointsColumn = -1
	column := 0
	headers.Each(func(_ int, h *goquery.Selection) {
		text := strings.ToLower(htmlutil.Text(h))
		if strings.Contains(text, "grade item") {
			hasGradeItem = true
		}
		if pointsColumn < 0 && strings.Contains(text, "points") {
			pointsColumn = column
		}
		column += colspan(h)
	})
	if hasGradeItem && pointsColumn >= 0 {
		return true, pointsColumn
	}
	return false, -1
}

// locateTable picks the table with "Grade Item" and "Points" headers. Without one, it falls
// back to the first table that has any headers at all.
func locateTable(doc *goquery.Selection) (gradeTable, bool) {
	var fallback *gradeTable

	var target gradeTable
	found := false
	htmlutil.DeepQueryAll(doc, tableSelector).EachWithBreak(func(_ int, table *goquery.Selection) bool {
		headers := tableHeaders(table)
		if headers.Length() == 0 {
			return true
		}

		authoritative, pointsColumn := scoreTable(headers)
		if authoritative {
			target = gradeTable{sel: table, pointsColumn: pointsColumn}
			found = true
			return false
		}
		if fallback == nil {
			fallback = &gradeTable{sel: table, pointsColumn: -1}
		}
		return true
	})

	switch {
	case found:
		return target, true
	case fallback != nil:
		return *fallback, true
	}
	return gradeTable{}, false
}

func isHeaderRow(row *goquery.Selection) bool {
	if row.Is(headerRowSelector) {
		return true
	}
	if htmlutil.DeepClosest(row, "thead").Length() > 0 {
		return true
	}
	return htmlutil.DeepFirst(row, headerCellMarkers).Length() > 0
}

func tableRows(table *goquery.Selection) *goquery.Selection {
	rows := htmlutil.DeepQueryAll(table, `[role=row]`).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return htmlutil.DeepFirst(s, `[role=columnheader]`).Length() == 0
	})
	if rows.Length() > 0 {
		return rows
	}
	return htmlutil.DeepQueryAll(table, `tr, .d2l-table-row`).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return !isHeaderRow(s)
	})
}

func newGradeRow(row *goquery.Selection, pointsColumn int) gradeRow {
	r := gradeRow{
		sel:          row,
		text:         htmlutil.Text(row),
		pointsColumn: pointsColumn,
	}
	r.lower = strings.ToLower(r.text)

	column := 0
	htmlutil.Outermost(htmlutil.DeepQueryAll(row, cellSelector)).Each(func(_ int, cell *goquery.Selection) {
		r.cells = append(r.cells, gradeCell{
			sel:    cell,
			text:   htmlutil.Text(cell),
			column: column,
		})
		column += colspan(cell)
	})
	return r
}

// name tiers

func nameFromCells(r gradeRow) (string, bool) {
	for _, c := range r.cells {
		if c.text != "" && !looksLikeBareGrade(c.text) {
			return c.text, true
		}
	}
	return "", false
}

func nameFromRowText(r gradeRow) (string, bool) {
	m := nameFromRowTextRegex.FindStringSubmatch(r.text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

var nameCascade = []matcher[gradeRow, string]{
	nameFromCells,
	nameFromRowText,
}

// cleanName drops the "- Score"/"- Grade" suffixes and trailing dashes d2l appends to names.
func cleanName(name string) string {
	name = htmlutil.CollapseWhitespace(name)
	name = nameSuffixRegex.ReplaceAllString(name, "")
	name = trailingDashRegex.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

func isCategoryHeading(name string) bool {
	key := textutil.NormalizeKey(name)
	return categoryHeadings[key] || categoryHeadings[strings.ReplaceAll(key, " ", "_")]
}

// points tiers

func pointsFromCells(r gradeRow) (Fraction, bool) {
	ungraded := ""
	bonusDash := false
	for _, c := range r.cells {
		if isExistingGrade(c.text) {
			return ExtractFraction(c.text)
		}
		if ungraded == "" && isUngraded(c.text) {
			ungraded = c.text
		}
		if c.text == "-" && r.isBonus() {
			bonusDash = true
		}
	}
	if ungraded != "" {
		return matchUngraded(ungraded)
	}
	if bonusDash {
		return Fraction{Earned: 0, Possible: DefaultBonusPossible}, true
	}
	return Fraction{}, false
}

func pointsFromColumn(r gradeRow) (Fraction, bool) {
	if r.pointsColumn < 0 {
		return Fraction{}, false
	}
	for _, c := range r.cells {
		if c.column == r.pointsColumn {
			return ExtractFraction(c.text)
		}
	}
	colindex := strconv.Itoa(r.pointsColumn + 1)
	index := strconv.Itoa(r.pointsColumn)
	for _, c := range r.cells {
		if c.sel.AttrOr("aria-colindex", "") == colindex ||
			c.sel.AttrOr("data-col-index", "") == index ||
			c.sel.AttrOr("data-column-index", "") == index {
			return ExtractFraction(c.text)
		}
	}
	return Fraction{}, false
}

// pointsFromLabels looks at accessible labels, grade widgets sometimes render "- / 10" there
// and nowhere in their text.
func pointsFromLabels(r gradeRow) (Fraction, bool) {
	var out Fraction
	found := false
	htmlutil.DeepQueryAll(r.sel, attributeLabels).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label := htmlutil.Attr(s, "aria-label", "title")
		if isUngraded(label) {
			out, found = matchUngraded(label)
		}
		return !found
	})
	return out, found
}

func pointsFromRowText(r gradeRow) (Fraction, bool) {
	return matchUngraded(r.text)
}

var pointsCascade = []matcher[gradeRow, Fraction]{
	pointsFromCells,
	pointsFromColumn,
	pointsFromLabels,
	pointsFromRowText,
}

func extractGradeRow(r gradeRow) (GradeItem, bool) {
	name, ok := firstMatch(r, nameCascade)
	if !ok {
		return GradeItem{}, false
	}
	name = cleanName(name)
	if name == "" {
		return GradeItem{}, false
	}
	if isCategoryHeading(name) && !fractionRegex.MatchString(r.text) {
		return GradeItem{}, false
	}

	points, ok := firstMatch(r, pointsCascade)
	if !ok {
		return GradeItem{}, false
	}

	return GradeItem{
		Id:       textutil.NormalizeKey(name),
		Name:     name,
		Earned:   points.Earned,
		Possible: points.Possible,
		IsBonus:  r.isBonus(),
		IsExempt: r.isExempt(),
	}, true
}

// dedupe keeps the first item of every id.
func dedupe(items []GradeItem) []GradeItem {
	seen := map[string]bool{}
	out := []GradeItem{}
	for _, item := range items {
		if seen[item.Id] {
			continue
		}
		seen[item.Id] = true
		out = append(out, item)
	}
	return out
}

func extractTable(table gradeTable) []GradeItem {
	var items []GradeItem
	tableRows(table.sel).Each(func(_ int, row *goquery.Selection) {
		item, ok := extractGradeRow(newGradeRow(row, table.pointsColumn))
		if ok {
			items = append(items, item)
		}
	})
	return dedupe(items)
}

// BuildGradesModel reads the grade items of a grades page. Pages without a recognizable table
// go through a looser scan of the whole document, pages without any grades give an empty
// model.
func BuildGradesModel(doc *goquery.Selection) GradesModel {
	model := emptyModel()

	table, ok := locateTable(doc)
	if ok {
		model.Items = extractTable(table)
	}
	if len(model.Items) == 0 {
		model.Items = looseScan(doc)
	}
	return model
}
