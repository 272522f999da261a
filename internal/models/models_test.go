package models

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizationStatsCompletionRate(t *testing.T) {
	tests := []struct {
		name  string
		stats OrganizationStats
		want  float64
	}{
		{"no tasks", OrganizationStats{TotalTasks: 0, CompletedTasks: 0}, 0},
		{"half done", OrganizationStats{TotalTasks: 4, CompletedTasks: 2}, 50},
		{"all done", OrganizationStats{TotalTasks: 3, CompletedTasks: 3}, 100},
		{"thirds", OrganizationStats{TotalTasks: 3, CompletedTasks: 1}, 33.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stats.CompletionRate())
		})
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "my-workspace", Slugify("My Workspace"))
	assert.Equal(t, "acme-co-2024", Slugify("  Acme & Co. 2024!! "))
	assert.Equal(t, "", Slugify("***"))
}

func TestEnumsValid(t *testing.T) {
	for _, s := range TaskStatuses {
		assert.True(t, s.Valid(), s)
	}
	for _, p := range Priorities {
		assert.True(t, p.Valid(), p)
	}
	for _, s := range ProjectStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, TaskStatus("DOING").Valid())
	assert.False(t, Priority("").Valid())
	assert.False(t, ProjectStatus("ARCHIVED").Valid())
	assert.Equal(t, "In Progress", TaskInProgress.Label())
}

func TestValidate(t *testing.T) {
	blank := "   "
	badStatus := TaskStatus("DOING")

	tests := []struct {
		name    string
		in      any
		field   string
		message string
	}{
		{
			name:    "blank task title",
			in:      CreateTaskInput{ProjectID: 1, Title: "  "},
			field:   "Title",
			message: "Task title is required",
		},
		{
			name:    "bad assignee email",
			in:      CreateTaskInput{ProjectID: 1, Title: "Write spec", AssigneeEmail: "nope"},
			field:   "AssigneeEmail",
			message: "Invalid email address",
		},
		{
			name:    "missing project name",
			in:      CreateProjectInput{OrganizationID: 1},
			field:   "Name",
			message: "Project name is required",
		},
		{
			name:    "missing organization",
			in:      CreateProjectInput{Name: "Launch"},
			field:   "OrganizationID",
			message: "Organization is required",
		},
		{
			name:    "blank title on update",
			in:      UpdateTaskInput{ID: 3, Title: &blank},
			field:   "Title",
			message: "Task title is required",
		},
		{
			name:    "unknown status on update",
			in:      UpdateTaskInput{ID: 3, Status: &badStatus},
			field:   "Status",
			message: "Task status must be one of TODO IN_PROGRESS DONE BLOCKED",
		},
		{
			name:    "comment author",
			in:      AddTaskCommentInput{TaskID: 1, Content: "hi"},
			field:   "AuthorEmail",
			message: "Author email is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.message, verr.Message)
		})
	}
}

func TestValidateAccepts(t *testing.T) {
	done := TaskDone
	assert.NoError(t, Validate(CreateTaskInput{ProjectID: 42, Title: "Write spec", Status: TaskTodo}))
	assert.NoError(t, Validate(UpdateTaskInput{ID: 1, Status: &done}))
	assert.NoError(t, Validate(CreateOrganizationInput{Name: "My Workspace", ContactEmail: "user@personal.local"}))
	assert.NoError(t, Validate(DeleteProjectInput{ID: 9}))
}

func TestMustRegister(t *testing.T) {
	v := validator.New()
	assert.NotPanics(t, func() { mustRegister(v, "notblank", validators.NotBlank) })
	assert.Error(t, v.Var("  ", "notblank"))
	assert.NoError(t, v.Var("ok", "notblank"))

	assert.Panics(t, func() {
		mustRegister(v, "", validators.NotBlank)
	})
}
