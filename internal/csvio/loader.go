package csvio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rhyrak/go-allocate/internal/allocator"
	"github.com/rhyrak/go-allocate/internal/tracing"
	"github.com/rhyrak/go-allocate/pkg/model"
)

// LoadStore reads the three input files named by cfg and builds a validated
// store.
func LoadStore(ctx context.Context, cfg *allocator.Configuration) (*model.Store, error) {
	_, span := tracing.StartSpan(ctx, "csvio.load")
	store, err := loadStore(cfg.StudentsFile, cfg.CoursesFile, cfg.CourseGroupsFile)
	if store != nil {
		span.WithInt("students", len(store.Students)).WithInt("courses", len(store.Courses))
	}
	tracing.EndSpan(span, err)
	return store, err
}

func loadStore(studentsPath, coursesPath, courseGroupsPath string) (*model.Store, error) {
	courses, err := LoadCourses(coursesPath)
	if err != nil {
		return nil, err
	}
	memberships, groups, err := LoadCourseGroups(courseGroupsPath)
	if err != nil {
		return nil, err
	}
	records, err := LoadStudents(studentsPath, courses, groups)
	if err != nil {
		return nil, err
	}
	return model.NewStore(courses, groups, memberships, records)
}

// LoadCourses reads and parses given csv file for course data.
func LoadCourses(path string) ([]*model.Course, error) {
	coursesFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer coursesFile.Close()

	courses := []*model.Course{}
	if err := gocsv.UnmarshalFile(coursesFile, &courses); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for _, c := range courses {
		c.ID = model.CourseID(strings.TrimSpace(string(c.ID)))
	}
	return courses, nil
}

// LoadCourseGroups reads course-group pairs. The group set is every distinct
// group named in the file, in order of first appearance.
func LoadCourseGroups(path string) ([]*model.Membership, []model.GroupID, error) {
	groupsFile, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer groupsFile.Close()

	memberships := []*model.Membership{}
	if err := gocsv.UnmarshalFile(groupsFile, &memberships); err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var groups []model.GroupID
	seen := make(map[model.GroupID]bool)
	for _, m := range memberships {
		m.Course = model.CourseID(strings.TrimSpace(string(m.Course)))
		m.Group = model.GroupID(strings.TrimSpace(string(m.Group)))
		if !seen[m.Group] {
			seen[m.Group] = true
			groups = append(groups, m.Group)
		}
	}
	return memberships, groups, nil
}

// LoadStudents reads the wide student file: fixed columns, one optional
// boolean column per group and one rank column per course.
func LoadStudents(path string, courses []*model.Course, groups []model.GroupID) ([]*model.StudentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	rows := []*model.StudentCSV{}
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	wide, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(wide) != len(rows) {
		return nil, fmt.Errorf("%w: %s has ragged rows", model.ErrMalformedInput, path)
	}

	records := make([]*model.StudentRecord, 0, len(rows))
	for i, row := range rows {
		record := &model.StudentRecord{
			ID:        model.StudentID(strings.TrimSpace(row.Name)),
			Year:      model.Year(strings.TrimSpace(row.Year)),
			NCourses:  row.NCourses,
			Sem1Limit: row.Sem1Limit,
			Sem2Limit: row.Sem2Limit,
			Ranking:   make(map[model.CourseID]int, len(courses)),
			Covered:   make(map[model.GroupID]bool, len(groups)),
		}
		for _, c := range courses {
			value, ok := wide[i][string(c.ID)]
			if !ok {
				return nil, fmt.Errorf("%w: %s has no column for course %s", model.ErrBadRanking, path, c.ID)
			}
			rank, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("%w: student %s rank for %s: %q", model.ErrBadRanking, record.ID, c.ID, value)
			}
			record.Ranking[c.ID] = rank
		}
		for _, g := range groups {
			value, ok := wide[i][string(g)]
			if !ok || strings.TrimSpace(value) == "" {
				continue
			}
			covered, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("%w: student %s group %s: %q", model.ErrBadStudent, record.ID, g, value)
			}
			record.Covered[g] = covered
		}
		records = append(records, record)
	}
	return records, nil
}
