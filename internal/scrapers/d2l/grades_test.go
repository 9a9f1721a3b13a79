package d2l

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const gradesPage = `<html><body>
<h2>Final Calculated Grade</h2>
<div>80 % B-</div>
<table class="d2l-table d2l-grid" role="grid">
	<tr class="d_gh">
		<th scope="col" class="d_hch" colspan="2">Grade Item</th>
		<th scope="col" class="d_hch">Points</th>
		<th scope="col" class="d_hch">Weight Achieved</th>
		<th scope="col" class="d_hch">Grade</th>
	</tr>
	<tr>
		<td class="d_gn"></td>
		<th scope="row"><label>Quiz 1</label></th>
		<td><label>8 / 10</label></td>
		<td>8 / 10</td>
		<td>80 %</td>
	</tr>
	<tr>
		<td class="d_gn"></td>
		<th scope="row"><label>Homework 2 - Score</label></th>
		<td><label>- / 20</label></td>
		<td>-</td>
		<td>- %</td>
	</tr>
	<tr>
		<td class="d_gn"></td>
		<th scope="row">Projects</th>
		<td>- / 50</td>
		<td></td>
		<td></td>
	</tr>
	<tr>
		<td class="d_gn"></td>
		<th scope="row">Extra Credit Bonus</th>
		<td>-</td>
		<td>-</td>
		<td>-</td>
	</tr>
	<tr>
		<td class="d_gn"></td>
		<th scope="row">Lab 3</th>
		<td>9 / 10</td>
		<td>Exempt</td>
		<td></td>
	</tr>
	<tr>
		<td class="d_gn"></td>
		<th scope="row">Midterm Exam</th>
		<td>40 / 50</td>
		<td></td>
		<td></td>
	</tr>
	<tr>
		<td class="d_gn"></td>
		<th scope="row">Participation</th>
		<td>out of 25</td>
		<td></td>
		<td></td>
	</tr>
	<tr>
		<td class="d_gn"></td>
		<th scope="row">Reading Check</th>
		<td><d2l-grade-result aria-label="Points: - / 15"></d2l-grade-result></td>
		<td></td>
		<td></td>
	</tr>
	<tr>
		<td class="d_gn"></td>
		<th scope="row">Notes</th>
		<td>—</td>
		<td></td>
		<td></td>
	</tr>
	<tr>
		<td class="d_gn"></td>
		<th scope="row">QUIZ   1</th>
		<td>5 / 10</td>
		<td></td>
		<td></td>
	</tr>
</table>
</body></html>`

func TestBuildGradesModel(t *testing.T) {
	model := BuildGradesModel(parsePage(t, gradesPage))

	expected := GradesModel{
		Scheme: SchemePoints,
		Items: []GradeItem{
			{Id: "quiz 1", Name: "Quiz 1", Earned: 8, Possible: 10},
			{Id: "homework 2", Name: "Homework 2", Earned: 0, Possible: 20},
			{Id: "extra credit bonus", Name: "Extra Credit Bonus", Earned: 0, Possible: DefaultBonusPossible, IsBonus: true},
			{Id: "lab 3", Name: "Lab 3", Earned: 9, Possible: 10, IsExempt: true},
			{Id: "midterm exam", Name: "Midterm Exam", Earned: 40, Possible: 50},
			{Id: "participation", Name: "Participation", Earned: 0, Possible: 25},
			{Id: "reading check", Name: "Reading Check", Earned: 0, Possible: 15},
		},
	}

	diff := cmp.Diff(expected, model)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestBuildGradesModelUniqueIds(t *testing.T) {
	model := BuildGradesModel(parsePage(t, gradesPage))

	seen := map[string]bool{}
	for _, item := range model.Items {
		require.False(t, seen[item.Id], "duplicate id %s", item.Id)
		seen[item.Id] = true
		require.Greater(t, item.Possible, 0.0, item.Name)
	}
}

func TestBuildGradesModelShadowTable(t *testing.T) {
	doc := parsePage(t, `<html><body>
<table>
	<tr><th>Name</th><th>Email</th></tr>
	<tr><td>Instructor</td><td>someone@example.com</td></tr>
</table>
<d2l-grades-view>
	<template shadowrootmode="open">
		<d2l-table-wrapper>
			<template shadowrootmode="open">
				<table>
					<thead><tr><th>Grade Item</th><th>Points</th></tr></thead>
					<tbody>
						<tr><td>Essay</td><td>18/20</td></tr>
						<tr><td>Bonus Round</td><td>3 / 5</td></tr>
					</tbody>
				</table>
			</template>
		</d2l-table-wrapper>
	</template>
</d2l-grades-view>
</body></html>`)

	expected := []GradeItem{
		{Id: "essay", Name: "Essay", Earned: 18, Possible: 20},
		{Id: "bonus round", Name: "Bonus Round", Earned: 3, Possible: 5, IsBonus: true},
	}
	diff := cmp.Diff(expected, BuildGradesModel(doc).Items)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestBuildGradesModelAriaGrid(t *testing.T) {
	doc := parsePage(t, `<html><body>
<div role="grid">
	<div role="row">
		<div role="columnheader">Grade Item</div>
		<div role="columnheader">Points</div>
	</div>
	<div role="row">
		<div role="rowheader">Quiz A</div>
		<div role="gridcell">4/5</div>
	</div>
	<div role="row">
		<div role="rowheader">Quiz B</div>
		<div role="gridcell"><span>B+ (87)</span></div>
	</div>
</div>
</body></html>`)

	expected := []GradeItem{
		{Id: "quiz a", Name: "Quiz A", Earned: 4, Possible: 5},
		{Id: "quiz b", Name: "Quiz B", Earned: 87, Possible: 100},
	}
	diff := cmp.Diff(expected, BuildGradesModel(doc).Items)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestBuildGradesModelKeywordTable(t *testing.T) {
	doc := parsePage(t, `<html><body>
<table>
	<tr><th>Item</th><th>Score</th></tr>
	<tr><td>Reflection</td><td>4 / 5</td></tr>
	<tr><td>Written_Discussions</td><td>- / 10</td></tr>
	<tr><td>Oral_Discussions</td><td>7 / 10</td></tr>
</table>
</body></html>`)

	expected := []GradeItem{
		{Id: "reflection", Name: "Reflection", Earned: 4, Possible: 5},
		{Id: "oral_discussions", Name: "Oral_Discussions", Earned: 7, Possible: 10},
	}
	diff := cmp.Diff(expected, BuildGradesModel(doc).Items)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestBuildGradesModelEmpty(t *testing.T) {
	for _, page := range []string{
		`<html><body><p>Nothing to see</p></body></html>`,
		`<html><body><table><tr><th>Grade Item</th><th>Points</th></tr></table></body></html>`,
	} {
		model := BuildGradesModel(parsePage(t, page))
		require.Equal(t, GradesModel{Scheme: SchemePoints, Items: []GradeItem{}}, model, page)
	}
}

func TestBuildGradesModelLooseScan(t *testing.T) {
	doc := parsePage(t, `<html><body>
<div class="grade-list">
	<div class="grade-row"><span class="name">Essay 1</span><span>18 / 20</span></div>
	<div class="grade-row"><span class="name">Essay 2</span><span>- / 20</span></div>
	<div class="grade-row"><span class="name">Final Calculated Grade</span><span>90 / 100</span></div>
</div>
<ul>
	<li>Total 38 / 40</li>
	<li>Bonus reading: out of 5</li>
</ul>
<div><div>Lab 3/5</div></div>
</body></html>`)

	expected := []GradeItem{
		{Id: "essay 1", Name: "Essay 1", Earned: 18, Possible: 20},
		{Id: "essay 2", Name: "Essay 2", Earned: 0, Possible: 20},
		{Id: "bonus reading", Name: "Bonus reading", Earned: 0, Possible: 5, IsBonus: true},
		{Id: "lab", Name: "Lab", Earned: 3, Possible: 5},
	}
	diff := cmp.Diff(expected, BuildGradesModel(doc).Items)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestCleanName(t *testing.T) {
	table := []struct {
		raw      string
		expected string
	}{
		{raw: "Quiz 1 - Score", expected: "Quiz 1"},
		{raw: "Essay – Grade", expected: "Essay"},
		{raw: "Lab 2 --", expected: "Lab 2"},
		{raw: "  Project  Alpha  ", expected: "Project Alpha"},
		{raw: "Scoreboard", expected: "Scoreboard"},
	}
	for _, row := range table {
		require.Equal(t, row.expected, cleanName(row.raw), row.raw)
	}
}

func TestBuildGradesModelLooseScanNumberedNames(t *testing.T) {
	doc := parsePage(t, `<html><body>
<d2l-grade-item><span>Quiz 1</span><span>9 / 10</span></d2l-grade-item>
<d2l-grade-item><span>Quiz 2</span><span>7 / 10</span></d2l-grade-item>
<d2l-grade-item><label>Lab 12</label><span>- / 15</span></d2l-grade-item>
</body></html>`)

	expected := []GradeItem{
		{Id: "quiz 1", Name: "Quiz 1", Earned: 9, Possible: 10},
		{Id: "quiz 2", Name: "Quiz 2", Earned: 7, Possible: 10},
		{Id: "lab 12", Name: "Lab 12", Earned: 0, Possible: 15},
	}
	diff := cmp.Diff(expected, BuildGradesModel(doc).Items)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestBuildGradesModelFirstFallbackTable(t *testing.T) {
	doc := parsePage(t, `<html><body>
<table>
	<thead><tr><th>Name</th><th>Date</th></tr></thead>
	<tr><td>Quiz A</td><td>5 / 10</td></tr>
</table>
<table>
	<thead><tr><th>Item</th><th>Score</th></tr></thead>
	<tr><td>Quiz B</td><td>7 / 10</td></tr>
</table>
</body></html>`)

	expected := []GradeItem{
		{Id: "quiz a", Name: "Quiz A", Earned: 5, Possible: 10},
	}
	diff := cmp.Diff(expected, BuildGradesModel(doc).Items)
	if diff != "" {
		t.Fatal(diff)
	}
}
