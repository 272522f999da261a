package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/store"
)

const projectSelect = `
	SELECT p.id, p.organization_id, o.name, p.name, p.description, p.status, p.due_date, p.created_at,
		COUNT(t.id),
		COALESCE(SUM(CASE WHEN t.status = 'TODO' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN t.status = 'IN_PROGRESS' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN t.status = 'DONE' THEN 1 ELSE 0 END), 0)
	FROM projects p
	JOIN organizations o ON o.id = p.organization_id
	LEFT JOIN tasks t ON t.project_id = p.id`

func scanProject(row scanner) (models.Project, error) {
	var (
		p   models.Project
		due sql.NullTime
	)
	err := row.Scan(&p.ID, &p.OrganizationID, &p.OrganizationName, &p.Name, &p.Description,
		&p.Status, &due, &p.CreatedAt,
		&p.TaskCount, &p.TodoTasks, &p.InProgressTasks, &p.CompletedTasks)
	if err != nil {
		return p, err
	}
	p.DueDate = timePtr(due)
	p.CompletionRate = models.Percentage(p.CompletedTasks, p.TaskCount)
	return p, nil
}

// Projects returns the projects of an organization, newest first
func (db *DB) Projects(ctx context.Context, q models.ProjectQuery) ([]models.Project, error) {
	query := projectSelect + " WHERE p.organization_id = ?"
	args := []any{q.OrganizationID}
	if q.Status != "" {
		query += " AND p.status = ?"
		args = append(args, q.Status)
	}
	query += " GROUP BY p.id ORDER BY p.created_at DESC, p.id DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Project retrieves a project with its tasks and their comments
func (db *DB) Project(ctx context.Context, id int64) (*models.Project, error) {
	p, err := db.projectRow(ctx, id)
	if err != nil {
		return nil, err
	}

	tasks, err := db.Tasks(ctx, models.TaskQuery{ProjectID: id})
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		comments, err := db.TaskComments(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Comments = comments
	}
	p.Tasks = tasks
	return p, nil
}

func (db *DB) projectRow(ctx context.Context, id int64) (*models.Project, error) {
	p, err := scanProject(db.QueryRowContext(ctx, projectSelect+" WHERE p.id = ? GROUP BY p.id", id))
	if isNoRows(err) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ProjectStats counts the tasks of a project by status
func (db *DB) ProjectStats(ctx context.Context, projectID int64) (models.ProjectStats, error) {
	p, err := db.projectRow(ctx, projectID)
	if err != nil {
		return models.ProjectStats{}, err
	}
	return models.ProjectStats{
		ProjectID:       p.ID,
		TotalTasks:      p.TaskCount,
		TodoTasks:       p.TodoTasks,
		InProgressTasks: p.InProgressTasks,
		CompletedTasks:  p.CompletedTasks,
		CompletionRate:  p.CompletionRate,
	}, nil
}

// CreateProject creates a project in an organization
func (db *DB) CreateProject(ctx context.Context, in models.CreateProjectInput) (*models.MutationResult[models.Project], error) {
	if _, err := db.Organization(ctx, in.OrganizationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Rejected[models.Project](notFound("Organization")), nil
		}
		return nil, err
	}
	if blank(in.Name) {
		return store.Rejected[models.Project]("Name is required"), nil
	}

	status := in.Status
	if status == "" {
		status = models.ProjectActive
	}

	now := db.timestamp()
	res, err := db.ExecContext(ctx, `
		INSERT INTO projects (organization_id, name, description, status, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, in.OrganizationID, in.Name, in.Description, status, nullTime(in.DueDate), now, now)
	if err != nil {
		return nil, fmt.Errorf("db: create project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	p, err := db.projectRow(ctx, id)
	if err != nil {
		return nil, err
	}
	db.logger.Debug("project created", zap.Int64("project_id", id), zap.Int64("organization_id", in.OrganizationID))
	return store.Accepted("Project created successfully", p), nil
}

// ownedProject loads a project and checks it belongs to orgID when orgID is
// set. A non-empty message is a rejection.
func (db *DB) ownedProject(ctx context.Context, id, orgID int64) (*models.Project, string, error) {
	p, err := db.projectRow(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Project"), nil
	}
	if err != nil {
		return nil, "", err
	}
	if orgID != 0 && p.OrganizationID != orgID {
		return nil, mismatch("Project", id, orgID), nil
	}
	return p, "", nil
}

// UpdateProject changes the non-nil fields of a project
func (db *DB) UpdateProject(ctx context.Context, in models.UpdateProjectInput) (*models.MutationResult[models.Project], error) {
	p, msg, err := db.ownedProject(ctx, in.ID, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if msg != "" {
		return store.Rejected[models.Project](msg), nil
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.DueDate != nil {
		p.DueDate = in.DueDate
	}

	_, err = db.ExecContext(ctx, `
		UPDATE projects SET name = ?, description = ?, status = ?, due_date = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Description, p.Status, nullTime(p.DueDate), db.timestamp(), in.ID)
	if err != nil {
		return nil, fmt.Errorf("db: update project %d: %w", in.ID, err)
	}

	p, err = db.projectRow(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return store.Accepted("Project updated successfully", p), nil
}

// DeleteProject deletes a project and all its tasks
func (db *DB) DeleteProject(ctx context.Context, in models.DeleteProjectInput) (*models.MutationResult[models.Project], error) {
	_, msg, err := db.ownedProject(ctx, in.ID, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if msg != "" {
		return store.Rejected[models.Project](msg), nil
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", in.ID); err != nil {
		return nil, fmt.Errorf("db: delete project %d: %w", in.ID, err)
	}
	db.logger.Debug("project deleted", zap.Int64("project_id", in.ID))
	return store.Accepted[models.Project]("Project deleted successfully", nil), nil
}
