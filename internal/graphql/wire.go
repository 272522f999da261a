package graphql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/tgienger/orgtrack/internal/models"
)

// ID decodes GraphQL ids, which the service sends as strings or numbers
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}
	s := string(b)
	if len(b) > 1 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("graphql: invalid id %s", b)
	}
	*id = ID(n)
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// Time decodes timestamps with or without zone and plain dates. Values
// without a zone are UTC.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("graphql: time must be a string: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("graphql: unrecognized time %q", s)
}

func (t *Time) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

type wireRef struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type wireOrganization struct {
	ID                 ID     `json:"id"`
	Name               string `json:"name"`
	Slug               string `json:"slug"`
	ContactEmail       string `json:"contactEmail"`
	ProjectCount       int    `json:"projectCount"`
	ActiveProjectCount int    `json:"activeProjectCount"`
	CreatedAt          Time   `json:"createdAt"`
}

func (w wireOrganization) model() models.Organization {
	return models.Organization{
		ID:                 int64(w.ID),
		Name:               w.Name,
		Slug:               w.Slug,
		ContactEmail:       w.ContactEmail,
		ProjectCount:       w.ProjectCount,
		ActiveProjectCount: w.ActiveProjectCount,
		CreatedAt:          w.CreatedAt.Time,
	}
}

type wireStats struct {
	TotalProjects     int `json:"totalProjects"`
	ActiveProjects    int `json:"activeProjects"`
	CompletedProjects int `json:"completedProjects"`
	TotalTasks        int `json:"totalTasks"`
	CompletedTasks    int `json:"completedTasks"`
}

type wireProjectStats struct {
	ProjectID       ID      `json:"projectId"`
	TotalTasks      int     `json:"totalTasks"`
	TodoTasks       int     `json:"todoTasks"`
	InProgressTasks int     `json:"inProgressTasks"`
	CompletedTasks  int     `json:"completedTasks"`
	CompletionRate  float64 `json:"completionRate"`
}

type wireProject struct {
	ID              ID         `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Status          string     `json:"status"`
	DueDate         *Time      `json:"dueDate"`
	TaskCount       int        `json:"taskCount"`
	TodoTasks       int        `json:"todoTasks"`
	InProgressTasks int        `json:"inProgressTasks"`
	CompletedTasks  int        `json:"completedTasks"`
	CompletionRate  float64    `json:"completionRate"`
	CreatedAt       Time       `json:"createdAt"`
	Organization    *wireRef   `json:"organization"`
	Tasks           []wireTask `json:"tasks"`
}

func (w wireProject) model() models.Project {
	p := models.Project{
		ID:              int64(w.ID),
		Name:            w.Name,
		Description:     w.Description,
		Status:          models.ProjectStatus(w.Status),
		DueDate:         w.DueDate.ptr(),
		TaskCount:       w.TaskCount,
		TodoTasks:       w.TodoTasks,
		InProgressTasks: w.InProgressTasks,
		CompletedTasks:  w.CompletedTasks,
		CompletionRate:  w.CompletionRate,
		CreatedAt:       w.CreatedAt.Time,
	}
	if w.Organization != nil {
		p.OrganizationID = int64(w.Organization.ID)
		p.OrganizationName = w.Organization.Name
	}
	if w.Tasks != nil {
		p.Tasks = make([]models.Task, len(w.Tasks))
		for i, wt := range w.Tasks {
			t := wt.model()
			t.ProjectID = p.ID
			t.ProjectName = p.Name
			t.OrganizationID = p.OrganizationID
			p.Tasks[i] = t
		}
	}
	return p
}

type wireTaskProject struct {
	ID           ID       `json:"id"`
	Name         string   `json:"name"`
	Organization *wireRef `json:"organization"`
}

type wireTask struct {
	ID            ID               `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Status        string           `json:"status"`
	Priority      string           `json:"priority"`
	AssigneeEmail string           `json:"assigneeEmail"`
	DueDate       *Time            `json:"dueDate"`
	CommentCount  int              `json:"commentCount"`
	CreatedAt     Time             `json:"createdAt"`
	Project       *wireTaskProject `json:"project"`
	Comments      []wireComment    `json:"comments"`
}

func (w wireTask) model() models.Task {
	t := models.Task{
		ID:            int64(w.ID),
		Title:         w.Title,
		Description:   w.Description,
		Status:        models.TaskStatus(w.Status),
		Priority:      models.Priority(w.Priority),
		AssigneeEmail: w.AssigneeEmail,
		DueDate:       w.DueDate.ptr(),
		CommentCount:  w.CommentCount,
		CreatedAt:     w.CreatedAt.Time,
	}
	if w.Project != nil {
		t.ProjectID = int64(w.Project.ID)
		t.ProjectName = w.Project.Name
		if w.Project.Organization != nil {
			t.OrganizationID = int64(w.Project.Organization.ID)
		}
	}
	if w.Comments != nil {
		t.Comments = make([]models.TaskComment, len(w.Comments))
		for i, wc := range w.Comments {
			c := wc.model()
			c.TaskID = t.ID
			t.Comments[i] = c
		}
	}
	return t
}

type wireComment struct {
	ID          ID       `json:"id"`
	Content     string   `json:"content"`
	AuthorEmail string   `json:"authorEmail"`
	CreatedAt   Time     `json:"createdAt"`
	Task        *wireRef `json:"task"`
}

func (w wireComment) model() models.TaskComment {
	c := models.TaskComment{
		ID:          int64(w.ID),
		Content:     w.Content,
		AuthorEmail: w.AuthorEmail,
		CreatedAt:   w.CreatedAt.Time,
	}
	if w.Task != nil {
		c.TaskID = int64(w.Task.ID)
	}
	return c
}

// payload is the shape every mutation returns
type payload struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	Organization *wireOrganization `json:"organization"`
	Project      *wireProject      `json:"project"`
	Task         *wireTask         `json:"task"`
	Comment      *wireComment      `json:"comment"`
}

// vars collects mutation variables, leaving out unset optional ones
type vars map[string]any

func (v vars) opt(name string, value *string) vars {
	if value != nil {
		v[name] = *value
	}
	return v
}

func (v vars) str(name, value string) vars {
	if value != "" {
		v[name] = value
	}
	return v
}

func (v vars) id(name string, value int64) vars {
	if value != 0 {
		v[name] = value
	}
	return v
}

func (v vars) date(name string, value *time.Time) vars {
	if value != nil {
		v[name] = value.Format(time.DateOnly)
	}
	return v
}

func (v vars) dateTime(name string, value *time.Time) vars {
	if value != nil {
		v[name] = value.UTC().Format(time.RFC3339)
	}
	return v
}
