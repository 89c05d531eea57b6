package model

type CourseID string

type Semester int

const (
	Semester1 Semester = 1
	Semester2 Semester = 2
)

// Valid reports whether s names one of the two teaching semesters.
func (s Semester) Valid() bool {
	return s == Semester1 || s == Semester2
}

type Course struct {
	ID        CourseID `csv:"name"`
	Semester  Semester `csv:"semester"`
	Capacity  int      `csv:"capacity"`
	Allocated int      `csv:"-"`
	Full      bool     `csv:"-"`
	Bumps     int      `csv:"-"`
}

// HasRoom checks if another student can be placed on the course.
func (c *Course) HasRoom() bool {
	return c.Allocated < c.Capacity
}

// Place takes one seat on the course.
// Returns false if the course was already full.
func (c *Course) Place() bool {
	if !c.HasRoom() {
		return false
	}
	c.Allocated++
	if c.Allocated == c.Capacity {
		c.Full = true
	}
	return true
}

// Bump records an attempt rejected because the course was full.
func (c *Course) Bump() {
	c.Bumps++
}
