package model

type GroupID string

// Membership is one row of the course-group relation. A course may appear
// in any number of rows.
type Membership struct {
	Course CourseID `csv:"course"`
	Group  GroupID  `csv:"group"`
}
