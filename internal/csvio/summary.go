package csvio

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/rhyrak/go-allocate/internal/allocator"
	"github.com/rhyrak/go-allocate/pkg/model"
)

// PrintSummary writes the textual run report.
func PrintSummary(w io.Writer, store *model.Store, result *allocator.Result) {
	fmt.Fprint(w, Summary(store, result))
}

// Summary renders course fill, preference counts, bumps, happiness spread
// and the students left short of courses or groups.
func Summary(store *model.Store, result *allocator.Result) string {
	var b strings.Builder
	nCourses := len(store.Courses)
	nStudents := len(store.Students)

	fmt.Fprintf(&b, "outcome: %s", result.Outcome)
	if result.Outcome == allocator.Aborted {
		fmt.Fprintf(&b, " (stuck student: %s)", result.StuckStudent)
	}
	b.WriteString("\n")

	b.WriteString("course allocations:\n")
	courseAllocated := 0
	for _, c := range store.Courses {
		fmt.Fprintf(&b, "%s: %d/%d\n", c.ID, c.Allocated, c.Capacity)
		courseAllocated += c.Allocated
	}

	studentAllocated, granted := 0, 0
	for _, s := range store.Students {
		studentAllocated += s.Allocated
		for _, got := range s.Got {
			if got {
				granted++
			}
		}
	}
	fmt.Fprintf(&b, "sum of allocations: course %d, student %d, got %d, needed %d\n", courseAllocated, studentAllocated, granted, store.Demand())

	var prefs []string
	for rank := 1; rank <= nCourses; rank++ {
		got := 0
		for _, s := range store.Students {
			if s.HasGot(rank) {
				got++
			}
		}
		prefs = append(prefs, fmt.Sprintf("pref %d: %d/%d", rank, got, nStudents))
	}
	fmt.Fprintf(&b, "number who got: %s\n", strings.Join(prefs, ", "))

	b.WriteString("bumps:\n")
	for _, c := range store.Courses {
		fmt.Fprintf(&b, "%s: %d\n", c.ID, result.Bumps[c.ID])
	}

	fmt.Fprintf(&b, "got N of top 3: %s\n", formatGotN(gotN(store.Students, 1, 3, 3)))
	if nCourses >= 10 {
		fmt.Fprintf(&b, "got N of pref 10 or lower: %s\n", formatGotN(gotN(store.Students, 10, nCourses, 3)))
		var y4 []*model.Student
		for _, s := range store.Students {
			if s.Year == model.YearFour {
				y4 = append(y4, s)
			}
		}
		fmt.Fprintf(&b, "got N of pref 10 or lower (Y4): %s\n", formatGotN(gotN(y4, 10, nCourses, 3)))
	}

	if nStudents > 0 {
		mean, std, lo, hi := happinessStats(store.Students)
		fmt.Fprintf(&b, "Happiness mean %.1f, std %.1f, (min, max) (%d, %d)\n", mean, std, lo, hi)
	}

	b.WriteString("Students with incomplete allocations:\n")
	for _, s := range store.Students {
		if !s.Complete() {
			fmt.Fprintf(&b, "%s\n", s.ID)
		}
	}
	b.WriteString("\n")

	b.WriteString("Y4 students who don't have all groups:\n")
	for _, s := range store.Students {
		if len(s.UnmetGroups(store.Groups)) > 0 {
			fmt.Fprintf(&b, "%s\n", s.ID)
		}
	}
	b.WriteString("\n")

	return b.String()
}

// gotN returns, for m = maxGot..1, the percentage of students holding at
// least m of the courses they ranked between first and last.
func gotN(students []*model.Student, first, last, maxGot int) []float64 {
	percents := make([]float64, 0, maxGot)
	for m := maxGot; m >= 1; m-- {
		count := 0
		for _, s := range students {
			got := 0
			for rank := first; rank <= last; rank++ {
				if s.HasGot(rank) {
					got++
				}
			}
			if got >= m {
				count++
			}
		}
		percent := 0.0
		if len(students) > 0 {
			percent = float64(count) * 100 / float64(len(students))
		}
		percents = append(percents, percent)
	}
	return percents
}

func formatGotN(percents []float64) string {
	parts := make([]string, 0, len(percents))
	for i, p := range percents {
		parts = append(parts, fmt.Sprintf("%d: %.0f%%", len(percents)-i, p))
	}
	return strings.Join(parts, ", ")
}

// happinessStats returns mean, sample standard deviation, min and max.
func happinessStats(students []*model.Student) (float64, float64, int, int) {
	lo, hi := students[0].Happiness, students[0].Happiness
	sum := 0.0
	for _, s := range students {
		sum += float64(s.Happiness)
		lo = min(lo, s.Happiness)
		hi = max(hi, s.Happiness)
	}
	mean := sum / float64(len(students))
	if len(students) < 2 {
		return mean, 0, lo, hi
	}
	sq := 0.0
	for _, s := range students {
		d := float64(s.Happiness) - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(students)-1)), lo, hi
}
