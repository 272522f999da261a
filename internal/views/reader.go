package views

import (
	"context"

	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/store"
)

// Reader serves backend reads through a Cache, so every view it returns can
// later be invalidated and refreshed
type Reader struct {
	queries store.Queries
	cache   *Cache
}

func NewReader(queries store.Queries, cache *Cache) *Reader {
	return &Reader{queries: queries, cache: cache}
}

// Cache returns the underlying cache
func (r *Reader) Cache() *Cache {
	return r.cache
}

func (r *Reader) OrganizationStats(ctx context.Context, orgID int64) (models.OrganizationStats, error) {
	return Get(ctx, r.cache, OrganizationStats(orgID), func(ctx context.Context) (models.OrganizationStats, error) {
		return r.queries.OrganizationStats(ctx, orgID)
	})
}

// Projects returns every project of an organization
func (r *Reader) Projects(ctx context.Context, orgID int64) ([]models.Project, error) {
	return Get(ctx, r.cache, Projects(orgID), func(ctx context.Context) ([]models.Project, error) {
		return r.queries.Projects(ctx, models.ProjectQuery{OrganizationID: orgID})
	})
}

// Project returns the project detail with embedded tasks and comments
func (r *Reader) Project(ctx context.Context, projectID int64) (*models.Project, error) {
	return Get(ctx, r.cache, Project(projectID), func(ctx context.Context) (*models.Project, error) {
		return r.queries.Project(ctx, projectID)
	})
}

func (r *Reader) ProjectStats(ctx context.Context, projectID int64) (models.ProjectStats, error) {
	return Get(ctx, r.cache, ProjectStats(projectID), func(ctx context.Context) (models.ProjectStats, error) {
		return r.queries.ProjectStats(ctx, projectID)
	})
}

// ProjectTasks returns every task of a project. Narrowing is left to taskfilter.
func (r *Reader) ProjectTasks(ctx context.Context, projectID int64) ([]models.Task, error) {
	return Get(ctx, r.cache, ProjectTasks(projectID), func(ctx context.Context) ([]models.Task, error) {
		return r.queries.Tasks(ctx, models.TaskQuery{ProjectID: projectID})
	})
}

// OrganizationTasks returns every task across the projects of an organization
func (r *Reader) OrganizationTasks(ctx context.Context, orgID int64) ([]models.Task, error) {
	return Get(ctx, r.cache, OrganizationTasks(orgID), func(ctx context.Context) ([]models.Task, error) {
		return r.queries.Tasks(ctx, models.TaskQuery{OrganizationID: orgID})
	})
}

func (r *Reader) Task(ctx context.Context, taskID int64) (*models.Task, error) {
	return Get(ctx, r.cache, Task(taskID), func(ctx context.Context) (*models.Task, error) {
		return r.queries.Task(ctx, taskID)
	})
}

// TaskComments returns the comments of a task, oldest first
func (r *Reader) TaskComments(ctx context.Context, taskID int64) ([]models.TaskComment, error) {
	return Get(ctx, r.cache, TaskComments(taskID), func(ctx context.Context) ([]models.TaskComment, error) {
		return r.queries.TaskComments(ctx, taskID)
	})
}
