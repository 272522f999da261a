package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/store"
)

// transitions lists the statuses each status may move to when an update asks
// for transition validation. BLOCKED has no entry.
var transitions = map[models.TaskStatus][]models.TaskStatus{
	models.TaskTodo:       {models.TaskInProgress, models.TaskDone},
	models.TaskInProgress: {models.TaskTodo, models.TaskDone},
	models.TaskDone:       {models.TaskTodo, models.TaskInProgress},
}

// CanTransition reports whether a task may move from one status to another
// under transition validation
func CanTransition(from, to models.TaskStatus) bool {
	return from == to || slices.Contains(transitions[from], to)
}

const taskSelect = `
	SELECT t.id, t.project_id, p.name, p.organization_id, t.title, t.description, t.status,
		t.priority, t.assignee_email, t.due_date, t.created_at,
		(SELECT COUNT(*) FROM task_comments c WHERE c.task_id = t.id)
	FROM tasks t
	JOIN projects p ON p.id = t.project_id`

func scanTask(row scanner) (models.Task, error) {
	var (
		t   models.Task
		due sql.NullTime
	)
	err := row.Scan(&t.ID, &t.ProjectID, &t.ProjectName, &t.OrganizationID, &t.Title, &t.Description,
		&t.Status, &t.Priority, &t.AssigneeEmail, &due, &t.CreatedAt, &t.CommentCount)
	if err != nil {
		return t, err
	}
	t.DueDate = timePtr(due)
	return t, nil
}

// Tasks returns the tasks matching q, newest first
func (db *DB) Tasks(ctx context.Context, q models.TaskQuery) ([]models.Task, error) {
	query := taskSelect + " WHERE 1 = 1"
	var args []any

	if q.ProjectID != 0 {
		query += " AND t.project_id = ?"
		args = append(args, q.ProjectID)
	}
	if q.OrganizationID != 0 {
		query += " AND p.organization_id = ?"
		args = append(args, q.OrganizationID)
	}
	if q.Status != "" {
		query += " AND t.status = ?"
		args = append(args, q.Status)
	}
	if q.AssigneeEmail != "" {
		query += " AND t.assignee_email = ?"
		args = append(args, q.AssigneeEmail)
	}
	query += " ORDER BY t.created_at DESC, t.id DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Task retrieves a task with its comments
func (db *DB) Task(ctx context.Context, id int64) (*models.Task, error) {
	t, err := db.taskRow(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := db.TaskComments(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Comments = comments
	return t, nil
}

func (db *DB) taskRow(ctx context.Context, id int64) (*models.Task, error) {
	t, err := scanTask(db.QueryRowContext(ctx, taskSelect+" WHERE t.id = ?", id))
	if isNoRows(err) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ownedTask loads a task and checks it belongs to orgID when orgID is set.
// A non-empty message is a rejection.
func (db *DB) ownedTask(ctx context.Context, id, orgID int64) (*models.Task, string, error) {
	t, err := db.taskRow(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Task"), nil
	}
	if err != nil {
		return nil, "", err
	}
	if orgID != 0 && t.OrganizationID != orgID {
		return nil, mismatch("Task", id, orgID), nil
	}
	return t, "", nil
}

// CreateTask creates a task in a project. Status defaults to TODO and
// priority to MEDIUM.
func (db *DB) CreateTask(ctx context.Context, in models.CreateTaskInput) (*models.MutationResult[models.Task], error) {
	p, msg, err := db.ownedProject(ctx, in.ProjectID, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if msg != "" {
		return store.Rejected[models.Task](msg), nil
	}
	if blank(in.Title) {
		return store.Rejected[models.Task]("Title is required"), nil
	}

	status := in.Status
	if status == "" {
		status = models.TaskTodo
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := db.timestamp()
	res, err := db.ExecContext(ctx, `
		INSERT INTO tasks (project_id, title, description, status, priority, assignee_email, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, in.Title, in.Description, status, priority, in.AssigneeEmail, nullTime(in.DueDate), now, now)
	if err != nil {
		return nil, fmt.Errorf("db: create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	t, err := db.Task(ctx, id)
	if err != nil {
		return nil, err
	}
	db.logger.Debug("task created", zap.Int64("task_id", id), zap.Int64("project_id", p.ID))
	return store.Accepted("Task created successfully", t), nil
}

// UpdateTask changes the non-nil fields of a task. With ValidateTransition a
// status change outside the transition table is rejected.
func (db *DB) UpdateTask(ctx context.Context, in models.UpdateTaskInput) (*models.MutationResult[models.Task], error) {
	t, msg, err := db.ownedTask(ctx, in.ID, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if msg != "" {
		return store.Rejected[models.Task](msg), nil
	}

	if in.Status != nil && in.ValidateTransition && !CanTransition(t.Status, *in.Status) {
		return store.Rejected[models.Task](fmt.Sprintf("Cannot transition from %s to %s", t.Status, *in.Status)), nil
	}

	if in.Title != nil {
		if blank(*in.Title) {
			return store.Rejected[models.Task]("Title is required"), nil
		}
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.AssigneeEmail != nil {
		t.AssigneeEmail = *in.AssigneeEmail
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}

	_, err = db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, assignee_email = ?,
			due_date = ?, updated_at = ?
		WHERE id = ?
	`, t.Title, t.Description, t.Status, t.Priority, t.AssigneeEmail, nullTime(t.DueDate), db.timestamp(), in.ID)
	if err != nil {
		return nil, fmt.Errorf("db: update task %d: %w", in.ID, err)
	}

	t, err = db.Task(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return store.Accepted("Task updated successfully", t), nil
}

// DeleteTask deletes a task and its comments
func (db *DB) DeleteTask(ctx context.Context, in models.DeleteTaskInput) (*models.MutationResult[models.Task], error) {
	_, msg, err := db.ownedTask(ctx, in.ID, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if msg != "" {
		return store.Rejected[models.Task](msg), nil
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", in.ID); err != nil {
		return nil, fmt.Errorf("db: delete task %d: %w", in.ID, err)
	}
	db.logger.Debug("task deleted", zap.Int64("task_id", in.ID))
	return store.Accepted[models.Task]("Task deleted successfully", nil), nil
}
