package model

import (
	"fmt"
)

// Store holds every record of one allocation run. Slices keep input order;
// the maps index them by identifier.
type Store struct {
	Students []*Student
	Courses  []*Course
	Groups   []GroupID

	courses     map[CourseID]*Course
	students    map[StudentID]*Student
	groups      map[GroupID]bool
	memberships map[CourseID][]GroupID
}

// NewStore indexes the records and rejects malformed input. Every student
// must rank every course exactly once using ranks 1..len(courses).
func NewStore(courses []*Course, groups []GroupID, memberships []*Membership, records []*StudentRecord) (*Store, error) {
	s := &Store{
		Courses:     courses,
		courses:     make(map[CourseID]*Course, len(courses)),
		students:    make(map[StudentID]*Student, len(records)),
		groups:      make(map[GroupID]bool, len(groups)),
		memberships: make(map[CourseID][]GroupID),
	}

	for _, c := range courses {
		if _, seen := s.courses[c.ID]; seen {
			return nil, fmt.Errorf("%w: course %s", ErrDuplicateID, c.ID)
		}
		if c.Capacity <= 0 {
			return nil, fmt.Errorf("%w: course %s has capacity %d", ErrBadCourse, c.ID, c.Capacity)
		}
		if !c.Semester.Valid() {
			return nil, fmt.Errorf("%w: course %s has semester %d", ErrBadCourse, c.ID, c.Semester)
		}
		s.courses[c.ID] = c
	}

	for _, g := range groups {
		if s.groups[g] {
			return nil, fmt.Errorf("%w: group %s", ErrDuplicateID, g)
		}
		s.groups[g] = true
		s.Groups = append(s.Groups, g)
	}

	for _, m := range memberships {
		if _, ok := s.courses[m.Course]; !ok {
			return nil, fmt.Errorf("%w: %s in course groups", ErrUnknownCourse, m.Course)
		}
		if !s.groups[m.Group] {
			return nil, fmt.Errorf("%w: %s in course groups", ErrUnknownGroup, m.Group)
		}
		if !containsGroup(s.memberships[m.Course], m.Group) {
			s.memberships[m.Course] = append(s.memberships[m.Course], m.Group)
		}
	}

	for _, r := range records {
		student, err := s.newStudent(r)
		if err != nil {
			return nil, err
		}
		s.students[student.ID] = student
		s.Students = append(s.Students, student)
	}

	return s, nil
}

func (s *Store) newStudent(r *StudentRecord) (*Student, error) {
	if _, seen := s.students[r.ID]; seen {
		return nil, fmt.Errorf("%w: student %s", ErrDuplicateID, r.ID)
	}
	if !r.Year.Valid() {
		return nil, fmt.Errorf("%w: student %s has year %q", ErrBadStudent, r.ID, r.Year)
	}
	if r.NCourses < 0 || r.Sem1Limit < 0 || r.Sem2Limit < 0 {
		return nil, fmt.Errorf("%w: student %s has negative course counts", ErrBadStudent, r.ID)
	}
	n := len(s.Courses)
	if len(r.Ranking) != n {
		return nil, fmt.Errorf("%w: student %s ranks %d of %d courses", ErrBadRanking, r.ID, len(r.Ranking), n)
	}

	preferences := make([]*Course, n)
	for id, rank := range r.Ranking {
		course, ok := s.courses[id]
		if !ok {
			return nil, fmt.Errorf("%w: student %s ranks %s", ErrUnknownCourse, r.ID, id)
		}
		if rank < 1 || rank > n {
			return nil, fmt.Errorf("%w: student %s gives %s rank %d", ErrBadRanking, r.ID, id, rank)
		}
		if preferences[rank-1] != nil {
			return nil, fmt.Errorf("%w: student %s uses rank %d twice", ErrBadRanking, r.ID, rank)
		}
		preferences[rank-1] = course
	}

	satisfied := make(map[GroupID]bool, len(s.Groups))
	for _, g := range s.Groups {
		satisfied[g] = false
	}
	for g, covered := range r.Covered {
		if !s.groups[g] {
			return nil, fmt.Errorf("%w: student %s covers %s", ErrUnknownGroup, r.ID, g)
		}
		satisfied[g] = covered
	}

	return &Student{
		ID:          r.ID,
		Year:        r.Year,
		NCourses:    r.NCourses,
		Sem1Limit:   r.Sem1Limit,
		Sem2Limit:   r.Sem2Limit,
		Preferences: preferences,
		Got:         make([]bool, n),
		Satisfied:   satisfied,
	}, nil
}

// Course looks up a course by identifier.
func (s *Store) Course(id CourseID) (*Course, bool) {
	c, ok := s.courses[id]
	return c, ok
}

// Student looks up a student by identifier.
func (s *Store) Student(id StudentID) (*Student, bool) {
	st, ok := s.students[id]
	return st, ok
}

// GroupsOf returns the groups a course counts towards.
func (s *Store) GroupsOf(id CourseID) []GroupID {
	return s.memberships[id]
}

// Covers checks if the course counts towards any of the given groups.
func (s *Store) Covers(id CourseID, groups []GroupID) bool {
	for _, g := range s.memberships[id] {
		if containsGroup(groups, g) {
			return true
		}
	}
	return false
}

// Demand sums the number of courses every student needs.
func (s *Store) Demand() int {
	total := 0
	for _, st := range s.Students {
		total += st.NCourses
	}
	return total
}

func containsGroup(s []GroupID, e GroupID) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}
