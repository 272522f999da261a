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

const organizationColumns = `
	o.id, o.name, o.slug, o.contact_email, o.created_at,
	(SELECT COUNT(*) FROM projects p WHERE p.organization_id = o.id),
	(SELECT COUNT(*) FROM projects p WHERE p.organization_id = o.id AND p.status = 'ACTIVE')`

func scanOrganization(row scanner) (models.Organization, error) {
	var o models.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.ContactEmail, &o.CreatedAt,
		&o.ProjectCount, &o.ActiveProjectCount)
	return o, err
}

// Organizations returns all organizations ordered by name
func (db *DB) Organizations(ctx context.Context) ([]models.Organization, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+organizationColumns+`
		FROM organizations o ORDER BY o.name, o.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := []models.Organization{}
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

// Organization retrieves an organization by ID
func (db *DB) Organization(ctx context.Context, id int64) (*models.Organization, error) {
	o, err := scanOrganization(db.QueryRowContext(ctx, `SELECT `+organizationColumns+`
		FROM organizations o WHERE o.id = ?`, id))
	if isNoRows(err) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// OrganizationStats aggregates the projects and tasks of an organization
func (db *DB) OrganizationStats(ctx context.Context, organizationID int64) (models.OrganizationStats, error) {
	var s models.OrganizationStats
	if _, err := db.Organization(ctx, organizationID); err != nil {
		return s, err
	}

	err := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'ACTIVE' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END), 0)
		FROM projects WHERE organization_id = ?
	`, organizationID).Scan(&s.TotalProjects, &s.ActiveProjects, &s.CompletedProjects)
	if err != nil {
		return s, err
	}

	err = db.QueryRowContext(ctx, `
		SELECT
			COUNT(t.id),
			COALESCE(SUM(CASE WHEN t.status = 'DONE' THEN 1 ELSE 0 END), 0)
		FROM tasks t JOIN projects p ON p.id = t.project_id
		WHERE p.organization_id = ?
	`, organizationID).Scan(&s.TotalTasks, &s.CompletedTasks)
	return s, err
}

// uniqueSlug appends -1, -2, ... to base until no other organization uses it
func uniqueSlug(ctx context.Context, tx *sql.Tx, base string, exclude int64) (string, error) {
	slug := base
	for n := 1; ; n++ {
		var taken bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM organizations WHERE slug = ? AND id != ?)",
			slug, exclude).Scan(&taken)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// CreateOrganization creates an organization. The slug is derived from the
// name when empty and made unique with a numeric suffix.
func (db *DB) CreateOrganization(ctx context.Context, in models.CreateOrganizationInput) (*models.MutationResult[models.Organization], error) {
	if blank(in.Name) {
		return store.Rejected[models.Organization]("Name is required"), nil
	}
	base := in.Slug
	if base == "" {
		base = models.Slugify(in.Name)
	}
	if base == "" {
		return store.Rejected[models.Organization]("Slug is required"), nil
	}

	var id int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		slug, err := uniqueSlug(ctx, tx, base, 0)
		if err != nil {
			return err
		}
		now := db.timestamp()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO organizations (name, slug, contact_email, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, in.Name, slug, in.ContactEmail, now, now)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("db: create organization: %w", err)
	}

	org, err := db.Organization(ctx, id)
	if err != nil {
		return nil, err
	}
	db.logger.Debug("organization created", zap.Int64("organization_id", id), zap.String("slug", org.Slug))
	return store.Accepted("Organization created successfully", org), nil
}

// UpdateOrganization changes the non-nil fields of an organization
func (db *DB) UpdateOrganization(ctx context.Context, in models.UpdateOrganizationInput) (*models.MutationResult[models.Organization], error) {
	org, err := db.Organization(ctx, in.ID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Rejected[models.Organization](notFound("Organization")), nil
	}
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		org.Name = *in.Name
	}
	if in.ContactEmail != nil {
		org.ContactEmail = *in.ContactEmail
	}

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		if in.Slug != nil && *in.Slug != org.Slug {
			var taken bool
			if err := tx.QueryRowContext(ctx,
				"SELECT EXISTS(SELECT 1 FROM organizations WHERE slug = ? AND id != ?)",
				*in.Slug, in.ID).Scan(&taken); err != nil {
				return err
			}
			if taken {
				return errSlugTaken
			}
			org.Slug = *in.Slug
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE organizations SET name = ?, slug = ?, contact_email = ?, updated_at = ?
			WHERE id = ?
		`, org.Name, org.Slug, org.ContactEmail, db.timestamp(), in.ID)
		return err
	})
	if errors.Is(err, errSlugTaken) {
		return store.Rejected[models.Organization](fmt.Sprintf("Slug %q is already in use", *in.Slug)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("db: update organization %d: %w", in.ID, err)
	}

	org, err = db.Organization(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return store.Accepted("Organization updated successfully", org), nil
}

var errSlugTaken = errors.New("slug taken")
