package d2l

import "time"

// SchemePoints is the only grading scheme a GradesModel is built with.
const SchemePoints = "points"

type GradeItem struct {
	// Id is the normalized name, overrides are keyed by it.
	Id       string  `json:"id"`
	Name     string  `json:"name"`
	Earned   float64 `json:"earned"`
	Possible float64 `json:"possible"`
	IsBonus  bool    `json:"isBonus"`
	IsExempt bool    `json:"isExempt"`
}

// GradesModel is immutable once built, ids in Items are unique and in table row order.
type GradesModel struct {
	Scheme string      `json:"scheme"`
	Items  []GradeItem `json:"items"`
}

func emptyModel() GradesModel {
	return GradesModel{Scheme: SchemePoints, Items: []GradeItem{}}
}

type Kind string

const (
	KIND_QUIZ       Kind = "Quiz"
	KIND_ASSIGNMENT Kind = "Assignment"
	KIND_DISCUSSION Kind = "Discussion"
	KIND_EXAM       Kind = "Exam"
	KIND_EVENT      Kind = "Event"
)

type Status string

const (
	STATUS_AVAILABLE         Status = "Available"
	STATUS_DUE               Status = "Due"
	STATUS_AVAILABILITY_ENDS Status = "Availability Ends"
	STATUS_EVENT             Status = "Event"
)

type UpcomingItem struct {
	Title    string `json:"title"`
	DateText string `json:"dateText"`
	// When is nil when DateText could not be parsed.
	When   *time.Time `json:"when"`
	Kind   Kind       `json:"kind"`
	Status Status     `json:"status"`
}

// Display is the date to show for the item, falling back to the raw text.
func (u UpcomingItem) Display() string {
	if u.When == nil {
		return u.DateText
	}
	return u.When.Format("Mon Jan 2, 3:04 PM")
}

type Course struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}
