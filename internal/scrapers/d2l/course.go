package d2l

import (
	"regexp"

	"brightspace-helper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	enrollmentCardSelector = `d2l-enrollment-card`
	courseLinkSelector     = `[href*="/d2l/home/"]`
)

var courseIdRegex = regexp.MustCompile(`/d2l/home/(\d+)`)

// CourseIdFromHref returns the org unit id in a course home link.
func CourseIdFromHref(href string) (string, bool) {
	m := courseIdRegex.FindStringSubmatch(href)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func isShadowRootSel(_ int, s *goquery.Selection) bool {
	return htmlutil.IsShadowRoot(s.Get(0))
}

// shadowRoots returns the shadow root templates directly attached to the card.
func shadowRoots(card *goquery.Selection) *goquery.Selection {
	return card.ChildrenFiltered("template").FilterFunction(isShadowRootSel)
}

// lightChildren are the card's course links outside of any shadow root.
func lightChildren(card *goquery.Selection) *goquery.Selection {
	return card.Find(courseLinkSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsUntilSelection(card).FilterFunction(isShadowRootSel).Length() == 0
	})
}

func linkCourseId(links *goquery.Selection) (*goquery.Selection, string, bool) {
	var link *goquery.Selection
	var id string
	links.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found, ok := CourseIdFromHref(s.AttrOr("href", ""))
		if ok {
			link, id = s, found
		}
		return !ok
	})
	return link, id, link != nil
}

// resolveCard finds the course of an enrollment card: the shadow root first, then its light
// children, then the card's own href.
func resolveCard(card *goquery.Selection) (Course, bool) {
	link, id, ok := linkCourseId(shadowRoots(card).Find(courseLinkSelector))
	if !ok {
		link, id, ok = linkCourseId(lightChildren(card))
	}
	if !ok {
		id, ok = CourseIdFromHref(card.AttrOr("href", ""))
		link = card
	}
	if !ok {
		return Course{}, false
	}

	name := htmlutil.Attr(card, "name", "title")
	if name == "" {
		name = htmlutil.Attr(link, "title", "aria-label")
	}
	if name == "" {
		name = htmlutil.Text(link)
	}
	return Course{Id: id, Name: name}, true
}

// ResolveCourses lists the courses of every enrollment card on the page, cards without a
// course link are skipped. A course shown by several cards is listed once.
func ResolveCourses(doc *goquery.Selection) []Course {
	courses := []Course{}
	seen := map[string]bool{}
	htmlutil.DeepQueryAll(doc, enrollmentCardSelector).Each(func(_ int, card *goquery.Selection) {
		course, ok := resolveCard(card)
		if !ok || seen[course.Id] {
			return
		}
		seen[course.Id] = true
		courses = append(courses, course)
	})
	return courses
}
