package model

import (
	"fmt"
	"strconv"
)

// MinExportedCourses is the number of course columns the allocation export
// always carries. Wider allocations add further columns.
const MinExportedCourses = 6

// AllocationCSVRow is one student's final allocation as exported. Courses
// holds the granted courses in rank order and is spread over the
// courses1..coursesN columns.
type AllocationCSVRow struct {
	Name          string     `csv:"name"`
	Year          string     `csv:"year"`
	NCourses      int        `csv:"ncourses"`
	Allocated     int        `csv:"allocated"`
	Happiness     int        `csv:"happiness"`
	Courses       []CourseID `csv:"-"`
	MissingGroups string     `csv:"missing_groups"`
}

// AllocationHeader returns the export header with width course columns.
func AllocationHeader(width int) []string {
	header := []string{"name", "year", "ncourses", "allocated", "happiness"}
	for i := 1; i <= width; i++ {
		header = append(header, fmt.Sprintf("courses%d", i))
	}
	return append(header, "missing_groups")
}

// Record renders the row under AllocationHeader(width). Unused course
// columns are left empty; width must be at least len(r.Courses).
func (r *AllocationCSVRow) Record(width int) []string {
	record := []string{
		r.Name,
		r.Year,
		strconv.Itoa(r.NCourses),
		strconv.Itoa(r.Allocated),
		strconv.Itoa(r.Happiness),
	}
	for i := 0; i < width; i++ {
		c := ""
		if i < len(r.Courses) {
			c = string(r.Courses[i])
		}
		record = append(record, c)
	}
	return append(record, r.MissingGroups)
}

// ExportWidth returns the number of course columns needed so that no row
// loses a course.
func ExportWidth(rows []*AllocationCSVRow) int {
	width := MinExportedCourses
	for _, r := range rows {
		width = max(width, len(r.Courses))
	}
	return width
}

// CourseCSVRow is one course's final state as exported.
type CourseCSVRow struct {
	Name      string `csv:"name"`
	Semester  int    `csv:"semester"`
	Capacity  int    `csv:"capacity"`
	Allocated int    `csv:"allocated"`
	Bumps     int    `csv:"bumps"`
}
