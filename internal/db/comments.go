package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/store"
)

func scanComment(row scanner) (models.TaskComment, error) {
	var c models.TaskComment
	err := row.Scan(&c.ID, &c.TaskID, &c.Content, &c.AuthorEmail, &c.CreatedAt)
	return c, err
}

// TaskComments retrieves all comments for a task, oldest first
func (db *DB) TaskComments(ctx context.Context, taskID int64) ([]models.TaskComment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, task_id, content, author_email, created_at
		FROM task_comments
		WHERE task_id = ?
		ORDER BY created_at ASC, id ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.TaskComment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (db *DB) comment(ctx context.Context, id int64) (*models.TaskComment, error) {
	c, err := scanComment(db.QueryRowContext(ctx, `
		SELECT id, task_id, content, author_email, created_at
		FROM task_comments WHERE id = ?
	`, id))
	if isNoRows(err) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AddTaskComment creates a comment on a task
func (db *DB) AddTaskComment(ctx context.Context, in models.AddTaskCommentInput) (*models.MutationResult[models.TaskComment], error) {
	t, msg, err := db.ownedTask(ctx, in.TaskID, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if msg != "" {
		return store.Rejected[models.TaskComment](msg), nil
	}
	if blank(in.Content) {
		return store.Rejected[models.TaskComment]("Content is required"), nil
	}

	now := db.timestamp()
	res, err := db.ExecContext(ctx, `
		INSERT INTO task_comments (task_id, content, author_email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.ID, in.Content, in.AuthorEmail, now, now)
	if err != nil {
		return nil, fmt.Errorf("db: add comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	c, err := db.comment(ctx, id)
	if err != nil {
		return nil, err
	}
	return store.Accepted("Comment added successfully", c), nil
}

// UpdateTaskComment replaces the content of a comment
func (db *DB) UpdateTaskComment(ctx context.Context, in models.UpdateTaskCommentInput) (*models.MutationResult[models.TaskComment], error) {
	if _, err := db.comment(ctx, in.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Rejected[models.TaskComment](notFound("TaskComment")), nil
		}
		return nil, err
	}
	if blank(in.Content) {
		return store.Rejected[models.TaskComment]("Content is required"), nil
	}

	_, err := db.ExecContext(ctx, "UPDATE task_comments SET content = ?, updated_at = ? WHERE id = ?",
		in.Content, db.timestamp(), in.ID)
	if err != nil {
		return nil, fmt.Errorf("db: update comment %d: %w", in.ID, err)
	}

	c, err := db.comment(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return store.Accepted("Comment updated successfully", c), nil
}

// DeleteTaskComment deletes a comment
func (db *DB) DeleteTaskComment(ctx context.Context, in models.DeleteTaskCommentInput) (*models.MutationResult[models.TaskComment], error) {
	res, err := db.ExecContext(ctx, "DELETE FROM task_comments WHERE id = ?", in.ID)
	if err != nil {
		return nil, fmt.Errorf("db: delete comment %d: %w", in.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.Rejected[models.TaskComment](notFound("TaskComment")), nil
	}
	return store.Accepted[models.TaskComment]("Comment deleted successfully", nil), nil
}
