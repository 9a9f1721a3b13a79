package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText returns the text of every text node under node, nested shadow trees included.
// Element boundaries become spaces, so adjacent inline elements never fuse their text.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	if node.Type == html.ElementNode {
		buffer.WriteByte(' ')
		defer buffer.WriteByte(' ')
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// OwnText returns only the text nodes that are direct children of node.
func OwnText(node *html.Node) string {
	var buffer bytes.Buffer
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			buffer.WriteString(child.Data)
			buffer.WriteByte(' ')
		}
	}
	return CollapseWhitespace(buffer.String())
}

// \s is ascii only, \p{Zs} catches the &nbsp; that grade tables are full of
var innerWhitespace = regexp.MustCompile(`[\s\p{Zs}]+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CollapseWhitespace turns every run of whitespace into a single space and trims the result.
func CollapseWhitespace(s string) string {
	s = innerWhitespace.ReplaceAllString(s, " ")
	s = removeNonPrintable(s)
	return strings.TrimSpace(s)
}

// Text is the collapsed text of every node of a selection, see GetText.
func Text(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, node := range sel.Nodes {
		getTextRecursive(node, &buffer)
		buffer.WriteByte(' ')
	}
	return CollapseWhitespace(buffer.String())
}

// Attr returns the first non-empty attribute out of names on the first node of sel.
func Attr(sel *goquery.Selection, names ...string) string {
	for _, name := range names {
		value := CollapseWhitespace(sel.AttrOr(name, ""))
		if value != "" {
			return value
		}
	}
	return ""
}
