package allocator

import (
	"testing"

	"github.com/rhyrak/go-allocate/pkg/model"
	"github.com/stretchr/testify/require"
)

func rank(ids ...model.CourseID) map[model.CourseID]int {
	r := make(map[model.CourseID]int, len(ids))
	for i, id := range ids {
		r[id] = i + 1
	}
	return r
}

func student(id model.StudentID, year model.Year, ncourses, sem1, sem2 int, prefs ...model.CourseID) *model.StudentRecord {
	return &model.StudentRecord{
		ID:        id,
		Year:      year,
		NCourses:  ncourses,
		Sem1Limit: sem1,
		Sem2Limit: sem2,
		Ranking:   rank(prefs...),
	}
}

// newStore derives the group set from the memberships.
func newStore(t *testing.T, courses []*model.Course, memberships []*model.Membership, records ...*model.StudentRecord) *model.Store {
	t.Helper()
	var groups []model.GroupID
	seen := map[model.GroupID]bool{}
	for _, m := range memberships {
		if !seen[m.Group] {
			seen[m.Group] = true
			groups = append(groups, m.Group)
		}
	}
	store, err := model.NewStore(courses, groups, memberships, records)
	require.NoError(t, err)
	return store
}

func mustStudent(t *testing.T, store *model.Store, id model.StudentID) *model.Student {
	t.Helper()
	s, ok := store.Student(id)
	require.True(t, ok, id)
	return s
}

func mustCourse(t *testing.T, store *model.Store, id model.CourseID) *model.Course {
	t.Helper()
	c, ok := store.Course(id)
	require.True(t, ok, id)
	return c
}

func newEngine(t *testing.T, store *model.Store, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(store, opts...)
	require.NoError(t, err)
	return engine
}
