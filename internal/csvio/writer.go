package csvio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rhyrak/go-allocate/pkg/model"
)

// ExportAllocations formats the per-student allocations into
// AllocationCSVRow structs and writes them to the CSV file at path.
func ExportAllocations(store *model.Store, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	if err := writeAllocations(formatAllocations(store), out); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ExportAllocationsString returns the per-student allocations as CSV text.
func ExportAllocationsString(store *model.Store) (string, error) {
	var b strings.Builder
	if err := writeAllocations(formatAllocations(store), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// writeAllocations emits one course column per granted course of the
// widest row, never fewer than model.MinExportedCourses.
func writeAllocations(rows []*model.AllocationCSVRow, w io.Writer) error {
	width := model.ExportWidth(rows)
	out := gocsv.DefaultCSVWriter(w)
	if err := out.Write(model.AllocationHeader(width)); err != nil {
		return err
	}
	for _, row := range rows {
		if err := out.Write(row.Record(width)); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// ExportCourses writes the final per-course counters to the CSV file at path.
func ExportCourses(store *model.Store, path string) error {
	rows := formatCourses(store)
	return marshalToFile(&rows, path)
}

func marshalToFile(rows interface{}, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	if err := gocsv.MarshalFile(rows, out); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func formatAllocations(store *model.Store) []*model.AllocationCSVRow {
	formatted := make([]*model.AllocationCSVRow, 0, len(store.Students))
	for _, s := range store.Students {
		var ids []model.CourseID
		for _, c := range s.GrantedCourses() {
			ids = append(ids, c.ID)
		}
		var missing []string
		for _, g := range s.UnmetGroups(store.Groups) {
			missing = append(missing, string(g))
		}
		row := &model.AllocationCSVRow{
			Name:          string(s.ID),
			Year:          string(s.Year),
			NCourses:      s.NCourses,
			Allocated:     s.Allocated,
			Happiness:     s.Happiness,
			Courses:       ids,
			MissingGroups: strings.Join(missing, " "),
		}
		formatted = append(formatted, row)
	}
	return formatted
}

func formatCourses(store *model.Store) []*model.CourseCSVRow {
	formatted := make([]*model.CourseCSVRow, 0, len(store.Courses))
	for _, c := range store.Courses {
		formatted = append(formatted, &model.CourseCSVRow{
			Name:      string(c.ID),
			Semester:  int(c.Semester),
			Capacity:  c.Capacity,
			Allocated: c.Allocated,
			Bumps:     c.Bumps,
		})
	}
	return formatted
}
