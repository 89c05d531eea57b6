package csvio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rhyrak/go-allocate/internal/allocator"
	"github.com/rhyrak/go-allocate/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coursesCSV = `name,semester,capacity
C01,1,2
C02,2,1
C03,1,2
`

const courseGroupsCSV = `course,group
C01,Biological
C02,Social
C03,Social
C03,Biological
`

const studentsCSV = `name,year,ncourses,sem1limit,sem2limit,Biological,Social,C01,C02,C03
s0000001 Ada,Y4,2,1,1,False,,1,2,3
s0000002 Bo,Y3,1,2,2,True,True,3,1,2
s0000003 Cy,,1,2,2,,,2,3,1
`

func writeInputs(t *testing.T, students, courses, groups string) *allocator.Configuration {
	t.Helper()
	dir := t.TempDir()
	cfg := allocator.NewDefaultConfiguration()
	cfg.StudentsFile = filepath.Join(dir, "students.csv")
	cfg.CoursesFile = filepath.Join(dir, "courses.csv")
	cfg.CourseGroupsFile = filepath.Join(dir, "coursegroups.csv")
	cfg.ExportFile = filepath.Join(dir, "allocations.csv")
	cfg.CoursesExportFile = filepath.Join(dir, "courses-out.csv")
	require.NoError(t, os.WriteFile(cfg.StudentsFile, []byte(students), 0o644))
	require.NoError(t, os.WriteFile(cfg.CoursesFile, []byte(courses), 0o644))
	require.NoError(t, os.WriteFile(cfg.CourseGroupsFile, []byte(groups), 0o644))
	return cfg
}

func TestLoadStore(t *testing.T) {
	cfg := writeInputs(t, studentsCSV, coursesCSV, courseGroupsCSV)

	store, err := LoadStore(context.Background(), cfg)
	require.NoError(t, err)

	assert.Len(t, store.Courses, 3)
	assert.Equal(t, []model.GroupID{"Biological", "Social"}, store.Groups)
	assert.Equal(t, []model.GroupID{"Social", "Biological"}, store.GroupsOf("C03"))

	c02, ok := store.Course("C02")
	require.True(t, ok)
	assert.Equal(t, model.Semester2, c02.Semester)
	assert.Equal(t, 1, c02.Capacity)

	ada, ok := store.Student("s0000001 Ada")
	require.True(t, ok)
	assert.Equal(t, model.YearFour, ada.Year)
	assert.Equal(t, 2, ada.NCourses)
	assert.Equal(t, 1, ada.Sem1Limit)
	assert.Equal(t, model.CourseID("C01"), ada.CourseAt(1).ID)
	assert.Equal(t, model.CourseID("C03"), ada.CourseAt(3).ID)
	assert.Equal(t, []model.GroupID{"Biological", "Social"}, ada.UnmetGroups(store.Groups))

	bo, _ := store.Student("s0000002 Bo")
	assert.Equal(t, model.CourseID("C02"), bo.CourseAt(1).ID)
	assert.True(t, bo.Satisfied["Biological"])
	assert.True(t, bo.Satisfied["Social"])

	cy, _ := store.Student("s0000003 Cy")
	assert.Equal(t, model.YearUnclassified, cy.Year)
}

func TestLoadStoreRejectsMalformedInput(t *testing.T) {
	var testCases = []struct {
		description string
		students    string
		groups      string
		expect      error
	}{
		{
			description: "duplicate rank",
			students:    "name,year,ncourses,sem1limit,sem2limit,C01,C02,C03\ns1,Y3,1,1,1,1,1,2\n",
			groups:      courseGroupsCSV,
			expect:      model.ErrBadRanking,
		},
		{
			description: "missing course column",
			students:    "name,year,ncourses,sem1limit,sem2limit,C01,C02\ns1,Y3,1,1,1,1,2\n",
			groups:      courseGroupsCSV,
			expect:      model.ErrBadRanking,
		},
		{
			description: "blank rank",
			students:    "name,year,ncourses,sem1limit,sem2limit,C01,C02,C03\ns1,Y3,1,1,1,1,,2\n",
			groups:      courseGroupsCSV,
			expect:      model.ErrBadRanking,
		},
		{
			description: "unknown course in course groups",
			students:    studentsCSV,
			groups:      "course,group\nC99,Social\n",
			expect:      model.ErrUnknownCourse,
		},
		{
			description: "year typo",
			students:    "name,year,ncourses,sem1limit,sem2limit,Social,C01,C02,C03\ns1,y4,1,1,1,False,1,2,3\n",
			groups:      courseGroupsCSV,
			expect:      model.ErrBadStudent,
		},
		{
			description: "bad group flag",
			students:    "name,year,ncourses,sem1limit,sem2limit,Social,C01,C02,C03\ns1,Y4,1,1,1,maybe,1,2,3\n",
			groups:      courseGroupsCSV,
			expect:      model.ErrBadStudent,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			cfg := writeInputs(t, testCase.students, coursesCSV, testCase.groups)
			_, err := LoadStore(context.Background(), cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, testCase.expect), err.Error())
			assert.True(t, errors.Is(err, model.ErrMalformedInput))
		})
	}
}

func TestLoadStoreMissingFile(t *testing.T) {
	cfg := writeInputs(t, studentsCSV, coursesCSV, courseGroupsCSV)
	cfg.CoursesFile = filepath.Join(t.TempDir(), "absent.csv")

	_, err := LoadStore(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
