package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const shadowPage = `<html><body>
<p class="item">light 1</p>
<d2l-enrollment-card id="outer">
	<template shadowrootmode="open">
		<p class="item">shadow 1</p>
		<d2l-card id="inner">
			<template shadowroot="open">
				<a class="item" href="/d2l/home/6606">shadow 2</a>
			</template>
		</d2l-card>
	</template>
	<span class="item">light 2</span>
</d2l-enrollment-card>
<template><p class="item">inert</p></template>
</body></html>`

func parse(t *testing.T, src string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func texts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, Text(s))
	})
	return out
}

func TestDeepQueryAllVisitsRootTreeFirst(t *testing.T) {
	doc := parse(t, shadowPage)

	found := DeepQueryAll(doc.Selection, ".item")
	require.Equal(t, []string{"light 1", "light 2", "inert", "shadow 1", "shadow 2"}, texts(found))
}

func TestDeepFirst(t *testing.T) {
	doc := parse(t, shadowPage)

	anchor := DeepFirst(doc.Selection, `[href*="/d2l/home/"]`)
	require.Equal(t, 1, anchor.Length())
	require.Equal(t, "shadow 2", Text(anchor))

	require.Equal(t, 0, DeepFirst(doc.Selection, "table").Length())
	require.Equal(t, 0, DeepFirst(doc.Selection, "[[invalid").Length())
}

func TestDeepClosestCrossesShadowBoundaries(t *testing.T) {
	doc := parse(t, shadowPage)

	anchor := DeepFirst(doc.Selection, "a")
	card := DeepClosest(anchor, "d2l-enrollment-card")
	require.Equal(t, "outer", card.AttrOr("id", ""))

	inner := DeepClosest(anchor, "d2l-card")
	require.Equal(t, "inner", inner.AttrOr("id", ""))

	self := DeepClosest(anchor, "a")
	require.Equal(t, anchor.Nodes, self.Nodes)

	require.Equal(t, 0, DeepClosest(anchor, "template").Length())
	require.Equal(t, 0, DeepClosest(anchor, "table").Length())
}

func TestOutermost(t *testing.T) {
	doc := parse(t, `<ul><li>a<ul><li>b</li></ul></li><li>c</li></ul>`)

	items := Outermost(doc.Find("li"))
	require.Equal(t, 2, items.Length())
	require.Equal(t, "c", Text(items.Last()))
}

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "Quiz 3 - Due", CollapseWhitespace("  Quiz 3 \n\t-  Due "))
	require.Equal(t, "", CollapseWhitespace(" \n "))
}

func TestOwnText(t *testing.T) {
	doc := parse(t, `<div id="x">Due <b>Oct 20</b> 11:59 PM</div>`)
	require.Equal(t, "Due 11:59 PM", OwnText(doc.Find("#x").Nodes[0]))
}

func TestTextSeparatesElements(t *testing.T) {
	doc := parse(t, `<div id="x"><span>Quiz 2</span><span>7 / 10</span></div><p id="y">Lab<b>3</b></p>`)
	require.Equal(t, "Quiz 2 7 / 10", Text(doc.Find("#x")))
	require.Equal(t, "Lab 3", Text(doc.Find("#y")))
	require.Equal(t, "Quiz 2 7 / 10 Lab 3", Text(doc.Find("#x, #y")))
}
