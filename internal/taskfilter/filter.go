// Package taskfilter derives the tasks a view displays from a full task list.
// Every function is pure.
package taskfilter

import (
	"fmt"
	"strings"

	"github.com/tgienger/orgtrack/internal/models"
)

// All disables a status or priority filter. The empty string does too.
const All = "ALL"

// Spec selects tasks by status, priority and assignee
type Spec struct {
	Status        string
	Priority      string
	AssigneeEmail string
}

// Everything is the identity filter
var Everything = Spec{Status: All, Priority: All}

func unset(v string) bool {
	return v == "" || v == All
}

// Matches reports whether t passes every filter of s. Assignee comparison is
// exact and case-sensitive.
func (s Spec) Matches(t models.Task) bool {
	if !unset(s.Status) && string(t.Status) != s.Status {
		return false
	}
	if !unset(s.Priority) && string(t.Priority) != s.Priority {
		return false
	}
	if s.AssigneeEmail != "" && t.AssigneeEmail != s.AssigneeEmail {
		return false
	}
	return true
}

// Active reports whether s filters anything out
func (s Spec) Active() bool {
	return !unset(s.Status) || !unset(s.Priority) || s.AssigneeEmail != ""
}

// Apply returns the tasks matching s in their input order. The input is not
// modified. A nil input yields nil.
func Apply(tasks []models.Task, s Spec) []models.Task {
	if tasks == nil {
		return nil
	}
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if s.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// ParseSpec builds a Spec from user-entered values. Status and priority are
// upper-cased and must be All, empty or a known value.
func ParseSpec(status, priority, assignee string) (Spec, error) {
	s := Spec{
		Status:        strings.ToUpper(strings.TrimSpace(status)),
		Priority:      strings.ToUpper(strings.TrimSpace(priority)),
		AssigneeEmail: strings.TrimSpace(assignee),
	}
	if !unset(s.Status) && !models.TaskStatus(s.Status).Valid() {
		return Spec{}, fmt.Errorf("unknown status %q", status)
	}
	if !unset(s.Priority) && !models.Priority(s.Priority).Valid() {
		return Spec{}, fmt.Errorf("unknown priority %q", priority)
	}
	return s, nil
}

// Column is one status lane of a task board
type Column struct {
	Status models.TaskStatus
	Label  string
	Tasks  []models.Task
}

// Board groups tasks into one column per status in TaskStatuses order. Each
// column keeps the input order. Columns are present even when empty.
func Board(tasks []models.Task) []Column {
	cols := make([]Column, len(models.TaskStatuses))
	index := make(map[models.TaskStatus]int, len(models.TaskStatuses))
	for i, st := range models.TaskStatuses {
		cols[i] = Column{Status: st, Label: st.Label()}
		index[st] = i
	}
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	return cols
}
