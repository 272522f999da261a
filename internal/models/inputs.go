package models

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ProjectQuery scopes a project list read
type ProjectQuery struct {
	OrganizationID int64
	Status         ProjectStatus
}

// TaskQuery scopes a task list read. Zero fields are not sent.
type TaskQuery struct {
	ProjectID      int64
	OrganizationID int64
	Status         TaskStatus
	AssigneeEmail  string
}

type CreateOrganizationInput struct {
	Name         string `validate:"notblank" label:"Organization name"`
	ContactEmail string `validate:"required,email" label:"Contact email"`
	Slug         string // derived from Name when empty
}

type UpdateOrganizationInput struct {
	ID           int64   `validate:"required" label:"Organization"`
	Name         *string `validate:"omitempty,notblank" label:"Organization name"`
	ContactEmail *string `validate:"omitempty,email" label:"Contact email"`
	Slug         *string
}

type CreateProjectInput struct {
	OrganizationID int64         `validate:"required" label:"Organization"`
	Name           string        `validate:"notblank" label:"Project name"`
	Description    string        // optional
	Status         ProjectStatus `validate:"omitempty,oneof=ACTIVE COMPLETED ON_HOLD CANCELLED" label:"Project status"`
	DueDate        *time.Time
}

type UpdateProjectInput struct {
	ID             int64          `validate:"required" label:"Project"`
	OrganizationID int64          // ownership check; defaults to the active organization
	Name           *string        `validate:"omitempty,notblank" label:"Project name"`
	Description    *string        // optional
	Status         *ProjectStatus `validate:"omitempty,oneof=ACTIVE COMPLETED ON_HOLD CANCELLED" label:"Project status"`
	DueDate        *time.Time
}

type DeleteProjectInput struct {
	ID             int64 `validate:"required" label:"Project"`
	OrganizationID int64
}

type CreateTaskInput struct {
	ProjectID      int64      `validate:"required" label:"Project"`
	Title          string     `validate:"notblank" label:"Task title"`
	Description    string     // optional
	Status         TaskStatus `validate:"omitempty,oneof=TODO IN_PROGRESS DONE BLOCKED" label:"Task status"`
	Priority       Priority   `validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT" label:"Task priority"`
	AssigneeEmail  string     `validate:"omitempty,email" label:"Assignee email"`
	DueDate        *time.Time
	OrganizationID int64
}

// UpdateTaskInput changes the non-nil fields of a task. ProjectID is not
// sent; it names the project whose views go stale.
type UpdateTaskInput struct {
	ID                 int64       `validate:"required" label:"Task"`
	ProjectID          int64       // scope only
	Title              *string     `validate:"omitempty,notblank" label:"Task title"`
	Description        *string     // optional
	Status             *TaskStatus `validate:"omitempty,oneof=TODO IN_PROGRESS DONE BLOCKED" label:"Task status"`
	Priority           *Priority   `validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT" label:"Task priority"`
	AssigneeEmail      *string     `validate:"omitempty,email" label:"Assignee email"`
	DueDate            *time.Time
	OrganizationID     int64
	ValidateTransition bool
}

type DeleteTaskInput struct {
	ID             int64 `validate:"required" label:"Task"`
	ProjectID      int64 // scope only
	OrganizationID int64
}

type AddTaskCommentInput struct {
	TaskID         int64  `validate:"required" label:"Task"`
	ProjectID      int64  // scope only
	Content        string `validate:"notblank" label:"Comment"`
	AuthorEmail    string `validate:"required,email" label:"Author email"`
	OrganizationID int64
}

type UpdateTaskCommentInput struct {
	ID        int64  `validate:"required" label:"Comment"`
	TaskID    int64  // scope only
	ProjectID int64  // scope only
	Content   string `validate:"notblank" label:"Comment"`
}

type DeleteTaskCommentInput struct {
	ID        int64 `validate:"required" label:"Comment"`
	TaskID    int64 // scope only
	ProjectID int64 // scope only
}

// ValidationError is a client-side rejection of a mutation input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("models: register %q validation: %v", tag, err))
	}
}

// Validate checks a mutation input and returns the first failing field as a
// *ValidationError
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return err
	}

	fe := fields[0]
	return &ValidationError{Field: fe.StructField(), Message: fieldMessage(fe)}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
