package allocator

import "github.com/rhyrak/go-allocate/pkg/model"

// Verdict is the outcome of an admissibility check.
type Verdict int

const (
	Admissible Verdict = iota
	RejectGroup
	RejectCapacity
	RejectSemesterLoad
	RejectGranted
)

func (v Verdict) String() string {
	switch v {
	case Admissible:
		return "admissible"
	case RejectGroup:
		return "no unmet group covered"
	case RejectCapacity:
		return "course full"
	case RejectSemesterLoad:
		return "semester limit reached"
	case RejectGranted:
		return "already granted"
	}
	return "unknown"
}

// Checker decides whether a student may take the course at a given rank.
// It only reads the store.
type Checker struct {
	store *model.Store
}

func NewChecker(store *model.Store) *Checker {
	return &Checker{store: store}
}

// Check runs the group filter, capacity and semester load checks in that
// order and reports the first one that fails.
func (c *Checker) Check(s *model.Student, rank int) Verdict {
	if s.HasGot(rank) {
		return RejectGranted
	}
	course := s.CourseAt(rank)

	// While any group is outstanding every grant must cover one of them.
	if unmet := s.UnmetGroups(c.store.Groups); len(unmet) > 0 && !c.store.Covers(course.ID, unmet) {
		return RejectGroup
	}

	if !course.HasRoom() {
		return RejectCapacity
	}

	if s.LoadIn(course.Semester)+1 > s.Limit(course.Semester) {
		return RejectSemesterLoad
	}

	return Admissible
}

// Admissible is the boolean form of Check.
func (c *Checker) Admissible(s *model.Student, rank int) bool {
	return c.Check(s, rank) == Admissible
}
