package model

type StudentID string

// Year is the student's year classification. Only YearFour students carry a
// group coverage requirement.
type Year string

const (
	YearUnclassified Year = ""
	YearThree        Year = "Y3"
	YearFour         Year = "Y4"
)

// Valid checks the year against the known classifications.
func (y Year) Valid() bool {
	switch y {
	case YearUnclassified, YearThree, YearFour:
		return true
	}
	return false
}

func (y Year) NeedsGroupCoverage() bool {
	return y == YearFour
}

// StudentCSV holds the fixed columns of a student row. Rank and group
// coverage columns depend on the course and group sets and are read
// separately.
type StudentCSV struct {
	Name      string `csv:"name"`
	Year      string `csv:"year"`
	NCourses  int    `csv:"ncourses"`
	Sem1Limit int    `csv:"sem1limit"`
	Sem2Limit int    `csv:"sem2limit"`
}

// StudentRecord is the canonical input for one student.
type StudentRecord struct {
	ID        StudentID
	Year      Year
	NCourses  int
	Sem1Limit int
	Sem2Limit int
	Ranking   map[CourseID]int // course -> rank, 1 is most preferred
	Covered   map[GroupID]bool // groups already covered before the run
}

type Student struct {
	ID          StudentID
	Year        Year
	NCourses    int
	Sem1Limit   int
	Sem2Limit   int
	Preferences []*Course // Preferences[rank-1]
	Got         []bool    // Got[rank-1]
	Satisfied   map[GroupID]bool
	Allocated   int
	Happiness   int
}

// Ranks returns the length of the preference list.
func (s *Student) Ranks() int {
	return len(s.Preferences)
}

// CourseAt returns the course ranked at the given position (1-based).
func (s *Student) CourseAt(rank int) *Course {
	if rank < 1 || rank > len(s.Preferences) {
		return nil
	}
	return s.Preferences[rank-1]
}

// HasGot checks if the course at the given rank was granted.
func (s *Student) HasGot(rank int) bool {
	if rank < 1 || rank > len(s.Got) {
		return false
	}
	return s.Got[rank-1]
}

// Complete reports whether the student holds all the courses they need.
func (s *Student) Complete() bool {
	return s.Allocated >= s.NCourses
}

// Limit returns the course-load limit for a semester.
func (s *Student) Limit(sem Semester) int {
	switch sem {
	case Semester1:
		return s.Sem1Limit
	case Semester2:
		return s.Sem2Limit
	}
	return 0
}

// LoadIn counts granted courses taught in the given semester.
func (s *Student) LoadIn(sem Semester) int {
	load := 0
	for i, got := range s.Got {
		if got && s.Preferences[i].Semester == sem {
			load++
		}
	}
	return load
}

// GrantedCourses lists granted courses in preference order.
func (s *Student) GrantedCourses() []*Course {
	var granted []*Course
	for i, got := range s.Got {
		if got {
			granted = append(granted, s.Preferences[i])
		}
	}
	return granted
}

// UnmetGroups lists the groups the student still has to cover. Students
// without a group requirement never have unmet groups.
func (s *Student) UnmetGroups(groups []GroupID) []GroupID {
	if !s.Year.NeedsGroupCoverage() {
		return nil
	}
	var unmet []GroupID
	for _, g := range groups {
		if !s.Satisfied[g] {
			unmet = append(unmet, g)
		}
	}
	return unmet
}
