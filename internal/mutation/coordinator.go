// Package mutation sends entity mutations to the backend and, once the
// backend acknowledges one, refreshes every view that depends on the mutated
// entity.
//
// Each call ends in exactly one of four ways:
//
//   - invalid input: rejected before any backend call, error is a *models.ValidationError
//   - rejection: the backend answered success=false, Message is its message, error is nil
//   - transport failure: Message is a generic text, error wraps ErrTransport
//   - success: the dependent views were invalidated
//
// Only success invalidates anything.
package mutation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/store"
	"github.com/tgienger/orgtrack/internal/views"
)

// ErrTransport marks a mutation whose outcome is unknown because the
// backend could not be reached or answered with something unreadable
var ErrTransport = errors.New("mutation: transport failure")

// Tenant supplies the active organization used when an input leaves its
// organization id unset
type Tenant interface {
	OrganizationID() (int64, bool)
}

// Invalidator refreshes views
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...views.Key) error
}

// Outcome is the result of one coordinated mutation
type Outcome[T any] struct {
	Success bool
	Message string
	Entity  *T

	// Invalidated lists the views refreshed after success
	Invalidated []views.Key
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// Coordinator is safe for concurrent use
type Coordinator struct {
	backend store.Mutations
	views   Invalidator
	tenant  Tenant
	logger  *zap.Logger
}

// New creates a Coordinator. tenant may be nil, in which case organization
// ids are sent only when the input sets them.
func New(backend store.Mutations, cache Invalidator, tenant Tenant, opts ...Option) *Coordinator {
	c := &Coordinator{
		backend: backend,
		views:   cache,
		tenant:  tenant,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// organization returns id, or the active organization when id is 0
func (c *Coordinator) organization(id int64) int64 {
	if id != 0 || c.tenant == nil {
		return id
	}
	if active, ok := c.tenant.OrganizationID(); ok {
		return active
	}
	return 0
}

type call[T any] struct {
	kind   views.MutationKind
	failed string // generic transport failure message
	input  any
	scope  views.Scope
	send   func(ctx context.Context) (*models.MutationResult[T], error)
	refine func(entity *T, scope *views.Scope)
}

func failure(verb, noun string) string {
	return fmt.Sprintf("Failed to %s %s. Please try again.", verb, noun)
}

func run[T any](ctx context.Context, c *Coordinator, k call[T]) (Outcome[T], error) {
	log := c.logger.With(zap.String("mutation", string(k.kind)))

	if err := models.Validate(k.input); err != nil {
		var invalid *models.ValidationError
		if errors.As(err, &invalid) {
			log.Debug("mutation input rejected", zap.String("field", invalid.Field), zap.String("message", invalid.Message))
			return Outcome[T]{Message: invalid.Message}, invalid
		}
		return Outcome[T]{Message: k.failed}, fmt.Errorf("mutation: validate %s: %w", k.kind, err)
	}

	res, err := k.send(ctx)
	if err == nil && res == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		log.Error("mutation failed", zap.Error(err))
		return Outcome[T]{Message: k.failed}, fmt.Errorf("%w: %s: %w", ErrTransport, k.kind, err)
	}

	if !res.Success {
		log.Info("mutation rejected", zap.String("message", res.Message))
		return Outcome[T]{Message: res.Message}, nil
	}

	scope := k.scope
	if res.Entity != nil && k.refine != nil {
		k.refine(res.Entity, &scope)
	}
	keys := views.Invalidations(k.kind, scope)
	if missing := views.Unscoped(k.kind, scope); len(missing) > 0 {
		log.Warn("mutation scope incomplete, views not refreshed",
			zap.Strings("views", kindNames(missing)),
			zap.Int64("organization_id", scope.OrganizationID),
			zap.Int64("project_id", scope.ProjectID),
			zap.Int64("task_id", scope.TaskID))
	}
	if err := c.views.Invalidate(ctx, keys...); err != nil {
		// the mutation is applied; views that failed to refresh stay stale
		log.Warn("refreshing views after mutation failed", zap.Error(err))
	}

	log.Info("mutation applied",
		zap.String("message", res.Message),
		zap.Stringers("invalidated", keys))
	return Outcome[T]{
		Success:     true,
		Message:     res.Message,
		Entity:      res.Entity,
		Invalidated: keys,
	}, nil
}

func kindNames(kinds []views.Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func (c *Coordinator) CreateOrganization(ctx context.Context, in models.CreateOrganizationInput) (Outcome[models.Organization], error) {
	return run(ctx, c, call[models.Organization]{
		kind:   views.CreateOrganization,
		failed: failure("save", "organization"),
		input:  in,
		send: func(ctx context.Context) (*models.MutationResult[models.Organization], error) {
			return c.backend.CreateOrganization(ctx, in)
		},
		refine: func(o *models.Organization, s *views.Scope) { s.OrganizationID = o.ID },
	})
}

func (c *Coordinator) UpdateOrganization(ctx context.Context, in models.UpdateOrganizationInput) (Outcome[models.Organization], error) {
	return run(ctx, c, call[models.Organization]{
		kind:   views.UpdateOrganization,
		failed: failure("save", "organization"),
		input:  in,
		scope:  views.Scope{OrganizationID: in.ID},
		send: func(ctx context.Context) (*models.MutationResult[models.Organization], error) {
			return c.backend.UpdateOrganization(ctx, in)
		},
	})
}

func (c *Coordinator) CreateProject(ctx context.Context, in models.CreateProjectInput) (Outcome[models.Project], error) {
	in.OrganizationID = c.organization(in.OrganizationID)
	return run(ctx, c, call[models.Project]{
		kind:   views.CreateProject,
		failed: failure("save", "project"),
		input:  in,
		scope:  views.Scope{OrganizationID: in.OrganizationID},
		send: func(ctx context.Context) (*models.MutationResult[models.Project], error) {
			return c.backend.CreateProject(ctx, in)
		},
		refine: refineProject,
	})
}

func (c *Coordinator) UpdateProject(ctx context.Context, in models.UpdateProjectInput) (Outcome[models.Project], error) {
	in.OrganizationID = c.organization(in.OrganizationID)
	return run(ctx, c, call[models.Project]{
		kind:   views.UpdateProject,
		failed: failure("save", "project"),
		input:  in,
		scope:  views.Scope{OrganizationID: in.OrganizationID, ProjectID: in.ID},
		send: func(ctx context.Context) (*models.MutationResult[models.Project], error) {
			return c.backend.UpdateProject(ctx, in)
		},
		refine: refineProject,
	})
}

func (c *Coordinator) DeleteProject(ctx context.Context, in models.DeleteProjectInput) (Outcome[models.Project], error) {
	in.OrganizationID = c.organization(in.OrganizationID)
	return run(ctx, c, call[models.Project]{
		kind:   views.DeleteProject,
		failed: failure("delete", "project"),
		input:  in,
		scope:  views.Scope{OrganizationID: in.OrganizationID, ProjectID: in.ID},
		send: func(ctx context.Context) (*models.MutationResult[models.Project], error) {
			return c.backend.DeleteProject(ctx, in)
		},
	})
}

func refineProject(p *models.Project, s *views.Scope) {
	s.ProjectID = p.ID
	if p.OrganizationID != 0 {
		s.OrganizationID = p.OrganizationID
	}
}

func (c *Coordinator) CreateTask(ctx context.Context, in models.CreateTaskInput) (Outcome[models.Task], error) {
	in.OrganizationID = c.organization(in.OrganizationID)
	return run(ctx, c, call[models.Task]{
		kind:   views.CreateTask,
		failed: failure("save", "task"),
		input:  in,
		scope:  views.Scope{OrganizationID: in.OrganizationID, ProjectID: in.ProjectID},
		send: func(ctx context.Context) (*models.MutationResult[models.Task], error) {
			return c.backend.CreateTask(ctx, in)
		},
		refine: refineTask,
	})
}

func (c *Coordinator) UpdateTask(ctx context.Context, in models.UpdateTaskInput) (Outcome[models.Task], error) {
	in.OrganizationID = c.organization(in.OrganizationID)
	return run(ctx, c, call[models.Task]{
		kind:   views.UpdateTask,
		failed: failure("save", "task"),
		input:  in,
		scope:  views.Scope{OrganizationID: in.OrganizationID, ProjectID: in.ProjectID, TaskID: in.ID},
		send: func(ctx context.Context) (*models.MutationResult[models.Task], error) {
			return c.backend.UpdateTask(ctx, in)
		},
		refine: refineTask,
	})
}

func (c *Coordinator) DeleteTask(ctx context.Context, in models.DeleteTaskInput) (Outcome[models.Task], error) {
	in.OrganizationID = c.organization(in.OrganizationID)
	return run(ctx, c, call[models.Task]{
		kind:   views.DeleteTask,
		failed: failure("delete", "task"),
		input:  in,
		scope:  views.Scope{OrganizationID: in.OrganizationID, ProjectID: in.ProjectID, TaskID: in.ID},
		send: func(ctx context.Context) (*models.MutationResult[models.Task], error) {
			return c.backend.DeleteTask(ctx, in)
		},
	})
}

func refineTask(t *models.Task, s *views.Scope) {
	s.TaskID = t.ID
	if t.ProjectID != 0 {
		s.ProjectID = t.ProjectID
	}
	if t.OrganizationID != 0 {
		s.OrganizationID = t.OrganizationID
	}
}

func (c *Coordinator) AddTaskComment(ctx context.Context, in models.AddTaskCommentInput) (Outcome[models.TaskComment], error) {
	in.OrganizationID = c.organization(in.OrganizationID)
	return run(ctx, c, call[models.TaskComment]{
		kind:   views.AddTaskComment,
		failed: failure("save", "comment"),
		input:  in,
		scope:  views.Scope{OrganizationID: in.OrganizationID, ProjectID: in.ProjectID, TaskID: in.TaskID},
		send: func(ctx context.Context) (*models.MutationResult[models.TaskComment], error) {
			return c.backend.AddTaskComment(ctx, in)
		},
		refine: refineComment,
	})
}

func (c *Coordinator) UpdateTaskComment(ctx context.Context, in models.UpdateTaskCommentInput) (Outcome[models.TaskComment], error) {
	return run(ctx, c, call[models.TaskComment]{
		kind:   views.UpdateTaskComment,
		failed: failure("save", "comment"),
		input:  in,
		scope:  views.Scope{ProjectID: in.ProjectID, TaskID: in.TaskID},
		send: func(ctx context.Context) (*models.MutationResult[models.TaskComment], error) {
			return c.backend.UpdateTaskComment(ctx, in)
		},
		refine: refineComment,
	})
}

func (c *Coordinator) DeleteTaskComment(ctx context.Context, in models.DeleteTaskCommentInput) (Outcome[models.TaskComment], error) {
	return run(ctx, c, call[models.TaskComment]{
		kind:   views.DeleteTaskComment,
		failed: failure("delete", "comment"),
		input:  in,
		scope:  views.Scope{ProjectID: in.ProjectID, TaskID: in.TaskID},
		send: func(ctx context.Context) (*models.MutationResult[models.TaskComment], error) {
			return c.backend.DeleteTaskComment(ctx, in)
		},
	})
}

func refineComment(cm *models.TaskComment, s *views.Scope) {
	if cm.TaskID != 0 {
		s.TaskID = cm.TaskID
	}
}
