package allocator

import (
	"fmt"

	"github.com/rhyrak/go-allocate/pkg/model"
)

// Validate audits the store after a run: capacities, semester loads,
// allocation counters, completeness and group coverage.
// Returns false and a message for invalid allocations.
func Validate(store *model.Store) (bool, string) {
	var message string
	var valid bool = true
	var capacityOK bool = true
	var loadOK bool = true
	var countersOK bool = true
	var groupsOK bool = true

	holders := make(map[model.CourseID]int, len(store.Courses))
	for _, s := range store.Students {
		granted := s.GrantedCourses()
		for _, c := range granted {
			holders[c.ID]++
		}
		if len(granted) != s.Allocated {
			countersOK = false
			message += fmt.Sprintf("- Student %s has %d granted courses but allocated=%d\n", s.ID, len(granted), s.Allocated)
		}
		for _, sem := range []model.Semester{model.Semester1, model.Semester2} {
			if load := s.LoadIn(sem); load > s.Limit(sem) {
				loadOK = false
				message += fmt.Sprintf("- Student %s takes %d courses in semester %d (limit %d)\n", s.ID, load, sem, s.Limit(sem))
			}
		}
	}

	for _, c := range store.Courses {
		if c.Allocated > c.Capacity {
			capacityOK = false
			message += fmt.Sprintf("- Course %s allocated %d/%d\n", c.ID, c.Allocated, c.Capacity)
		}
		if holders[c.ID] != c.Allocated {
			countersOK = false
			message += fmt.Sprintf("- Course %s has %d students but allocated=%d\n", c.ID, holders[c.ID], c.Allocated)
		}
	}

	var incomplete []*model.Student
	for _, s := range store.Students {
		if !s.Complete() {
			incomplete = append(incomplete, s)
		}
	}
	if len(incomplete) > 0 {
		message += fmt.Sprintf("- There are %d students with incomplete allocations:\n", len(incomplete))
		for _, s := range incomplete {
			message += fmt.Sprintf("    %s %d/%d\n", s.ID, s.Allocated, s.NCourses)
		}
	}

	for _, s := range store.Students {
		if unmet := s.UnmetGroups(store.Groups); len(unmet) > 0 {
			groupsOK = false
			message += fmt.Sprintf("- Student %s is missing groups %v\n", s.ID, unmet)
		}
	}

	if !groupsOK {
		valid = false
		message = "[FAIL]: Group coverage check.\n" + message
	} else {
		message = "[  OK]: Group coverage check.\n" + message
	}
	if len(incomplete) > 0 {
		valid = false
		message = "[FAIL]: Complete allocation check.\n" + message
	} else {
		message = "[  OK]: Complete allocation check.\n" + message
	}
	if !countersOK {
		valid = false
		message = "[FAIL]: Allocation counter check.\n" + message
	} else {
		message = "[  OK]: Allocation counter check.\n" + message
	}
	if !loadOK {
		valid = false
		message = "[FAIL]: Semester load check.\n" + message
	} else {
		message = "[  OK]: Semester load check.\n" + message
	}
	if !capacityOK {
		valid = false
		message = "[FAIL]: Course capacity check.\n" + message
	} else {
		message = "[  OK]: Course capacity check.\n" + message
	}

	return valid, message
}
