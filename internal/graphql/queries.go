package graphql

import (
	"context"

	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/store"
)

func (c *Client) Organizations(ctx context.Context) ([]models.Organization, error) {
	var wire []wireOrganization
	if _, err := c.do(ctx, opOrganizations, nil, &wire); err != nil {
		return nil, err
	}
	orgs := make([]models.Organization, len(wire))
	for i, w := range wire {
		orgs[i] = w.model()
	}
	return orgs, nil
}

func (c *Client) Organization(ctx context.Context, id int64) (*models.Organization, error) {
	var wire wireOrganization
	found, err := c.do(ctx, opOrganization, vars{"id": id}, &wire)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrNotFound
	}
	org := wire.model()
	return &org, nil
}

func (c *Client) OrganizationStats(ctx context.Context, organizationID int64) (models.OrganizationStats, error) {
	var wire wireStats
	found, err := c.do(ctx, opOrganizationStats, vars{"organizationId": organizationID}, &wire)
	if err != nil {
		return models.OrganizationStats{}, err
	}
	if !found {
		return models.OrganizationStats{}, store.ErrNotFound
	}
	return models.OrganizationStats(wire), nil
}

func (c *Client) Projects(ctx context.Context, q models.ProjectQuery) ([]models.Project, error) {
	v := vars{}.id("organizationId", q.OrganizationID).str("status", string(q.Status))
	var wire []wireProject
	if _, err := c.do(ctx, opProjects, v, &wire); err != nil {
		return nil, err
	}
	projects := make([]models.Project, len(wire))
	for i, w := range wire {
		projects[i] = w.model()
	}
	return projects, nil
}

// Project returns the project with its tasks and their comments
func (c *Client) Project(ctx context.Context, id int64) (*models.Project, error) {
	var wire wireProject
	found, err := c.do(ctx, opProject, vars{"id": id}, &wire)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrNotFound
	}
	p := wire.model()
	if p.Tasks == nil {
		p.Tasks = []models.Task{}
	}
	return &p, nil
}

func (c *Client) ProjectStats(ctx context.Context, projectID int64) (models.ProjectStats, error) {
	var wire wireProjectStats
	found, err := c.do(ctx, opProjectStats, vars{"projectId": projectID}, &wire)
	if err != nil {
		return models.ProjectStats{}, err
	}
	if !found {
		return models.ProjectStats{}, store.ErrNotFound
	}
	return models.ProjectStats{
		ProjectID:       int64(wire.ProjectID),
		TotalTasks:      wire.TotalTasks,
		TodoTasks:       wire.TodoTasks,
		InProgressTasks: wire.InProgressTasks,
		CompletedTasks:  wire.CompletedTasks,
		CompletionRate:  wire.CompletionRate,
	}, nil
}

func (c *Client) Tasks(ctx context.Context, q models.TaskQuery) ([]models.Task, error) {
	v := vars{}.
		id("projectId", q.ProjectID).
		id("organizationId", q.OrganizationID).
		str("status", string(q.Status)).
		str("assigneeEmail", q.AssigneeEmail)

	var wire []wireTask
	if _, err := c.do(ctx, opTasks, v, &wire); err != nil {
		return nil, err
	}
	tasks := make([]models.Task, len(wire))
	for i, w := range wire {
		tasks[i] = w.model()
	}
	return tasks, nil
}

// Task returns the task with its comments
func (c *Client) Task(ctx context.Context, id int64) (*models.Task, error) {
	var wire wireTask
	found, err := c.do(ctx, opTask, vars{"id": id}, &wire)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrNotFound
	}
	t := wire.model()
	return &t, nil
}

func (c *Client) TaskComments(ctx context.Context, taskID int64) ([]models.TaskComment, error) {
	var wire []wireComment
	if _, err := c.do(ctx, opTaskComments, vars{"taskId": taskID}, &wire); err != nil {
		return nil, err
	}
	comments := make([]models.TaskComment, len(wire))
	for i, w := range wire {
		comments[i] = w.model()
		if comments[i].TaskID == 0 {
			comments[i].TaskID = taskID
		}
	}
	return comments, nil
}
