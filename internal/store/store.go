// Package store defines the contract of the backend that owns organizations,
// projects, tasks and comments.
//
// An error returned by a Mutations method is a transport or protocol failure.
// Application-level rejections come back as a MutationResult with
// Success=false.
package store

import (
	"context"
	"errors"

	"github.com/tgienger/orgtrack/internal/models"
)

// ErrNotFound is returned by single-entity reads when the entity does not exist
var ErrNotFound = errors.New("store: not found")

// Queries are the read operations of the backend
type Queries interface {
	Organizations(ctx context.Context) ([]models.Organization, error)
	Organization(ctx context.Context, id int64) (*models.Organization, error)
	OrganizationStats(ctx context.Context, organizationID int64) (models.OrganizationStats, error)

	Projects(ctx context.Context, q models.ProjectQuery) ([]models.Project, error)
	Project(ctx context.Context, id int64) (*models.Project, error)
	ProjectStats(ctx context.Context, projectID int64) (models.ProjectStats, error)

	Tasks(ctx context.Context, q models.TaskQuery) ([]models.Task, error)
	Task(ctx context.Context, id int64) (*models.Task, error)
	TaskComments(ctx context.Context, taskID int64) ([]models.TaskComment, error)
}

// Mutations are the write operations of the backend
type Mutations interface {
	CreateOrganization(ctx context.Context, in models.CreateOrganizationInput) (*models.MutationResult[models.Organization], error)
	UpdateOrganization(ctx context.Context, in models.UpdateOrganizationInput) (*models.MutationResult[models.Organization], error)

	CreateProject(ctx context.Context, in models.CreateProjectInput) (*models.MutationResult[models.Project], error)
	UpdateProject(ctx context.Context, in models.UpdateProjectInput) (*models.MutationResult[models.Project], error)
	DeleteProject(ctx context.Context, in models.DeleteProjectInput) (*models.MutationResult[models.Project], error)

	CreateTask(ctx context.Context, in models.CreateTaskInput) (*models.MutationResult[models.Task], error)
	UpdateTask(ctx context.Context, in models.UpdateTaskInput) (*models.MutationResult[models.Task], error)
	DeleteTask(ctx context.Context, in models.DeleteTaskInput) (*models.MutationResult[models.Task], error)

	AddTaskComment(ctx context.Context, in models.AddTaskCommentInput) (*models.MutationResult[models.TaskComment], error)
	UpdateTaskComment(ctx context.Context, in models.UpdateTaskCommentInput) (*models.MutationResult[models.TaskComment], error)
	DeleteTaskComment(ctx context.Context, in models.DeleteTaskCommentInput) (*models.MutationResult[models.TaskComment], error)
}

// Store is the full backend contract
type Store interface {
	Queries
	Mutations
}

// Rejected builds an application-level rejection
func Rejected[T any](message string) *models.MutationResult[T] {
	return &models.MutationResult[T]{Success: false, Message: message}
}

// Accepted builds a successful mutation result
func Accepted[T any](message string, entity *T) *models.MutationResult[T] {
	return &models.MutationResult[T]{Success: true, Message: message, Entity: entity}
}
