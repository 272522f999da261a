package graphql

import (
	"context"

	"github.com/tgienger/orgtrack/internal/models"
)

// mutate sends a mutation and decodes its payload. A null payload is a
// protocol failure.
func (c *Client) mutate(ctx context.Context, op operation, v vars) (payload, error) {
	var p payload
	found, err := c.do(ctx, op, v, &p)
	if err != nil {
		return p, err
	}
	if !found {
		return p, &Error{Operation: op.Name, StatusCode: 200, Messages: []string{"empty mutation payload"}}
	}
	return p, nil
}

func result[T any](p payload, entity *T) *models.MutationResult[T] {
	res := &models.MutationResult[T]{Success: p.Success, Message: p.Message}
	if p.Success {
		res.Entity = entity
	}
	return res
}

func organizationOf(p payload) *models.Organization {
	if p.Organization == nil {
		return nil
	}
	o := p.Organization.model()
	return &o
}

func projectOf(p payload) *models.Project {
	if p.Project == nil {
		return nil
	}
	pr := p.Project.model()
	return &pr
}

func taskOf(p payload) *models.Task {
	if p.Task == nil {
		return nil
	}
	t := p.Task.model()
	return &t
}

func commentOf(p payload) *models.TaskComment {
	if p.Comment == nil {
		return nil
	}
	c := p.Comment.model()
	return &c
}

func (c *Client) CreateOrganization(ctx context.Context, in models.CreateOrganizationInput) (*models.MutationResult[models.Organization], error) {
	v := vars{"name": in.Name, "contactEmail": in.ContactEmail}.str("slug", in.Slug)
	p, err := c.mutate(ctx, opCreateOrganization, v)
	if err != nil {
		return nil, err
	}
	return result(p, organizationOf(p)), nil
}

func (c *Client) UpdateOrganization(ctx context.Context, in models.UpdateOrganizationInput) (*models.MutationResult[models.Organization], error) {
	v := vars{"id": in.ID}.
		opt("name", in.Name).
		opt("contactEmail", in.ContactEmail).
		opt("slug", in.Slug)
	p, err := c.mutate(ctx, opUpdateOrganization, v)
	if err != nil {
		return nil, err
	}
	return result(p, organizationOf(p)), nil
}

func (c *Client) CreateProject(ctx context.Context, in models.CreateProjectInput) (*models.MutationResult[models.Project], error) {
	v := vars{"organizationId": in.OrganizationID, "name": in.Name}.
		str("description", in.Description).
		str("status", string(in.Status)).
		date("dueDate", in.DueDate)
	p, err := c.mutate(ctx, opCreateProject, v)
	if err != nil {
		return nil, err
	}
	return result(p, projectOf(p)), nil
}

func (c *Client) UpdateProject(ctx context.Context, in models.UpdateProjectInput) (*models.MutationResult[models.Project], error) {
	v := vars{"id": in.ID}.
		id("organizationId", in.OrganizationID).
		opt("name", in.Name).
		opt("description", in.Description).
		date("dueDate", in.DueDate)
	if in.Status != nil {
		v["status"] = string(*in.Status)
	}
	p, err := c.mutate(ctx, opUpdateProject, v)
	if err != nil {
		return nil, err
	}
	return result(p, projectOf(p)), nil
}

func (c *Client) DeleteProject(ctx context.Context, in models.DeleteProjectInput) (*models.MutationResult[models.Project], error) {
	p, err := c.mutate(ctx, opDeleteProject, vars{"id": in.ID}.id("organizationId", in.OrganizationID))
	if err != nil {
		return nil, err
	}
	return result[models.Project](p, nil), nil
}

func (c *Client) CreateTask(ctx context.Context, in models.CreateTaskInput) (*models.MutationResult[models.Task], error) {
	v := vars{"projectId": in.ProjectID, "title": in.Title}.
		str("description", in.Description).
		str("status", string(in.Status)).
		str("priority", string(in.Priority)).
		str("assigneeEmail", in.AssigneeEmail).
		dateTime("dueDate", in.DueDate).
		id("organizationId", in.OrganizationID)
	p, err := c.mutate(ctx, opCreateTask, v)
	if err != nil {
		return nil, err
	}
	return result(p, taskOf(p)), nil
}

func (c *Client) UpdateTask(ctx context.Context, in models.UpdateTaskInput) (*models.MutationResult[models.Task], error) {
	v := vars{"id": in.ID}.
		opt("title", in.Title).
		opt("description", in.Description).
		opt("assigneeEmail", in.AssigneeEmail).
		dateTime("dueDate", in.DueDate).
		id("organizationId", in.OrganizationID)
	if in.Status != nil {
		v["status"] = string(*in.Status)
	}
	if in.Priority != nil {
		v["priority"] = string(*in.Priority)
	}
	if in.ValidateTransition {
		v["validateTransition"] = true
	}
	p, err := c.mutate(ctx, opUpdateTask, v)
	if err != nil {
		return nil, err
	}
	return result(p, taskOf(p)), nil
}

func (c *Client) DeleteTask(ctx context.Context, in models.DeleteTaskInput) (*models.MutationResult[models.Task], error) {
	p, err := c.mutate(ctx, opDeleteTask, vars{"id": in.ID}.id("organizationId", in.OrganizationID))
	if err != nil {
		return nil, err
	}
	return result[models.Task](p, nil), nil
}

func (c *Client) AddTaskComment(ctx context.Context, in models.AddTaskCommentInput) (*models.MutationResult[models.TaskComment], error) {
	v := vars{"taskId": in.TaskID, "content": in.Content, "authorEmail": in.AuthorEmail}.
		id("organizationId", in.OrganizationID)
	p, err := c.mutate(ctx, opAddTaskComment, v)
	if err != nil {
		return nil, err
	}
	comment := commentOf(p)
	if comment != nil && comment.TaskID == 0 {
		comment.TaskID = in.TaskID
	}
	return result(p, comment), nil
}

func (c *Client) UpdateTaskComment(ctx context.Context, in models.UpdateTaskCommentInput) (*models.MutationResult[models.TaskComment], error) {
	p, err := c.mutate(ctx, opUpdateTaskComment, vars{"id": in.ID, "content": in.Content})
	if err != nil {
		return nil, err
	}
	return result(p, commentOf(p)), nil
}

func (c *Client) DeleteTaskComment(ctx context.Context, in models.DeleteTaskCommentInput) (*models.MutationResult[models.TaskComment], error) {
	p, err := c.mutate(ctx, opDeleteTaskComment, vars{"id": in.ID})
	if err != nil {
		return nil, err
	}
	return result[models.TaskComment](p, nil), nil
}
