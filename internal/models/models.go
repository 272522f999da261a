package models

import (
	"regexp"
	"strings"
	"time"
)

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCancelled ProjectStatus = "CANCELLED"
)

// ProjectStatuses lists every project status in display order
var ProjectStatuses = []ProjectStatus{ProjectActive, ProjectCompleted, ProjectOnHold, ProjectCancelled}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectOnHold, ProjectCancelled:
		return true
	}
	return false
}

// TaskStatus is the workflow state of a task. Any status may follow any other
// unless the backend is asked to validate the transition.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
	TaskBlocked    TaskStatus = "BLOCKED"
)

// TaskStatuses lists every task status in board order
var TaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskDone, TaskBlocked}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone, TaskBlocked:
		return true
	}
	return false
}

// Label returns the human readable column title
func (s TaskStatus) Label() string {
	switch s {
	case TaskTodo:
		return "To Do"
	case TaskInProgress:
		return "In Progress"
	case TaskDone:
		return "Done"
	case TaskBlocked:
		return "Blocked"
	}
	return string(s)
}

// Priority of a task. The empty value means no priority was set.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Priorities lists every priority from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Organization is the tenant root. Project counts are computed by the backend.
type Organization struct {
	ID                 int64
	Name               string
	Slug               string
	ContactEmail       string
	ProjectCount       int
	ActiveProjectCount int
	CreatedAt          time.Time
}

// OrganizationStats holds aggregate counters for one organization
type OrganizationStats struct {
	TotalProjects     int
	ActiveProjects    int
	CompletedProjects int
	TotalTasks        int
	CompletedTasks    int
}

// CompletionRate returns the percentage of completed tasks, 0 when there are none
func (s OrganizationStats) CompletionRate() float64 {
	return Percentage(s.CompletedTasks, s.TotalTasks)
}

// Project belongs to exactly one organization. Task counters and
// CompletionRate are derived by the backend.
type Project struct {
	ID               int64
	OrganizationID   int64
	OrganizationName string
	Name             string
	Description      string
	Status           ProjectStatus
	DueDate          *time.Time
	TaskCount        int
	TodoTasks        int
	InProgressTasks  int
	CompletedTasks   int
	CompletionRate   float64
	CreatedAt        time.Time
	Tasks            []Task // populated by project detail reads
}

// ProjectStats holds task counters for one project
type ProjectStats struct {
	ProjectID       int64
	TotalTasks      int
	TodoTasks       int
	InProgressTasks int
	CompletedTasks  int
	CompletionRate  float64
}

// Task belongs to exactly one project
type Task struct {
	ID             int64
	ProjectID      int64
	ProjectName    string
	OrganizationID int64
	Title          string
	Description    string
	Status         TaskStatus
	Priority       Priority
	AssigneeEmail  string
	DueDate        *time.Time
	CommentCount   int
	CreatedAt      time.Time
	Comments       []TaskComment // populated by detail reads
}

// TaskComment is a note appended to a task
type TaskComment struct {
	ID          int64
	TaskID      int64
	Content     string
	AuthorEmail string
	CreatedAt   time.Time
}

// MutationResult is the backend's answer to a mutation. Success=false is an
// application-level rejection and Message explains it.
type MutationResult[T any] struct {
	Success bool
	Message string
	Entity  *T
}

// Percentage returns part/total*100 rounded to two decimals, 0 when total is 0
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	v := float64(part) / float64(total) * 100
	return float64(int64(v*100+0.5)) / 100
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a url-safe slug from an organization name
func Slugify(name string) string {
	s := slugSeparators.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
