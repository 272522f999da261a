// Package tenant resolves which organization the user is operating in.
//
// The Resolver is a small state machine:
//
//	Unresolved -> Fetching -> Resolved
//	                 |           ^
//	                 v           |
//	              Creating ------+
//	Fetching/Creating -> Failed -> (next Resolve) Fetching
//
// Callers that arrive while a fetch or a default-organization creation is in
// flight attach to that flight, so one resolution cycle issues at most one
// creation request. The flight outlives the caller that started it.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/views"
)

// State of the resolution state machine
type State int

const (
	StateUnresolved State = iota
	StateFetching
	StateCreating
	StateResolved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateFetching:
		return "fetching"
	case StateCreating:
		return "creating"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// PreferenceKey is the preference holding the active organization id
const PreferenceKey = "organizationId"

// DefaultOrganization seeds the organization created for a tenant that has none
var DefaultOrganization = models.CreateOrganizationInput{
	Name:         "My Workspace",
	ContactEmail: "user@personal.local",
	Slug:         "my-workspace",
}

// ErrResolving is returned by Reset while a resolution cycle is in flight
var ErrResolving = errors.New("tenant: resolution in progress")

// ResolutionError reports a failed resolution cycle. Op is "fetch" when the
// organization list could not be read and "create" when the default
// organization could not be created.
type ResolutionError struct {
	Op      string
	Message string // backend rejection message, if any
	Err     error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tenant: %s organization: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("tenant: %s organization: %s", e.Op, e.Message)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Source is the part of the backend the resolver needs
type Source interface {
	Organizations(ctx context.Context) ([]models.Organization, error)
	CreateOrganization(ctx context.Context, in models.CreateOrganizationInput) (*models.MutationResult[models.Organization], error)
}

// Option configures a Resolver
type Option func(*Resolver)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithSwitchHook registers fn to be called with the new active organization
// when a reload replaces it without ChangeOrganization, for example because
// the active one was removed. fn runs without the resolver lock held.
func WithSwitchHook(fn func(models.Organization)) Option {
	return func(r *Resolver) {
		r.onSwitch = fn
	}
}

// WithDefaultOrganization overrides the seed of the auto-created organization
func WithDefaultOrganization(in models.CreateOrganizationInput) Option {
	return func(r *Resolver) {
		r.seed = in
	}
}

// Resolver owns the active organization selection
type Resolver struct {
	source Source
	prefs  Preferences
	seed     models.CreateOrganizationInput
	logger   *zap.Logger
	onSwitch func(models.Organization)

	mu      sync.Mutex
	state   State
	flight  *flight
	orgs    []models.Organization
	current *models.Organization
	err     error
	reloads uint64
}

// flight is one in-progress resolution cycle shared by every caller
type flight struct {
	done chan struct{}
	org  models.Organization
	err  error
}

func (f *flight) wait(ctx context.Context) (models.Organization, error) {
	select {
	case <-f.done:
		return f.org, f.err
	case <-ctx.Done():
		return models.Organization{}, ctx.Err()
	}
}

// NewResolver creates an unresolved Resolver
func NewResolver(source Source, prefs Preferences, opts ...Option) *Resolver {
	r := &Resolver{
		source: source,
		prefs:  prefs,
		seed:   DefaultOrganization,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the active organization, fetching the organization list and
// creating the default organization when needed. Once resolved it returns the
// current selection without another fetch. After a failure the next call
// starts a new cycle. Cancelling ctx abandons the wait, never the cycle.
func (r *Resolver) Resolve(ctx context.Context) (models.Organization, error) {
	r.mu.Lock()
	switch r.state {
	case StateResolved:
		org := *r.current
		r.mu.Unlock()
		return org, nil
	case StateFetching, StateCreating:
		f := r.flight
		r.mu.Unlock()
		return f.wait(ctx)
	}

	f := &flight{done: make(chan struct{})}
	r.flight = f
	r.err = nil
	r.reloads++ // reloads of an earlier cycle are superseded
	r.setState(StateFetching)
	r.mu.Unlock()

	go func(ctx context.Context) {
		org, err := r.run(ctx)
		r.finish(f, org, err)
	}(context.WithoutCancel(ctx))
	return f.wait(ctx)
}

func (r *Resolver) run(ctx context.Context) (models.Organization, error) {
	orgs, err := r.source.Organizations(ctx)
	if err != nil {
		return models.Organization{}, &ResolutionError{Op: "fetch", Err: err}
	}

	if len(orgs) > 0 {
		org := r.pick(ctx, orgs)
		r.mu.Lock()
		r.orgs = clone(orgs)
		r.mu.Unlock()
		r.persist(ctx, org.ID)
		return org, nil
	}

	r.mu.Lock()
	r.setState(StateCreating)
	r.mu.Unlock()

	r.logger.Info("no organizations found, creating default organization",
		zap.String("name", r.seed.Name),
		zap.String("slug", r.seed.Slug))

	res, err := r.source.CreateOrganization(ctx, r.seed)
	if err != nil {
		return models.Organization{}, &ResolutionError{Op: "create", Err: err}
	}
	if res == nil || !res.Success || res.Entity == nil {
		msg := "organization was not created"
		if res != nil && res.Message != "" {
			msg = res.Message
		}
		return models.Organization{}, &ResolutionError{Op: "create", Message: msg}
	}

	org := *res.Entity
	r.mu.Lock()
	r.orgs = []models.Organization{org}
	r.mu.Unlock()
	r.persist(ctx, org.ID)
	return org, nil
}

func (r *Resolver) finish(f *flight, org models.Organization, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.err = err
		r.current = nil
		r.setState(StateFailed)
		r.logger.Error("organization resolution failed", zap.Error(err))
	} else {
		r.current = &org
		r.setState(StateResolved)
		r.logger.Info("organization resolved",
			zap.Int64("organization_id", org.ID),
			zap.String("name", org.Name))
	}

	f.org, f.err = org, err
	r.flight = nil
	close(f.done)
}

// pick selects the persisted organization when it is in the list, otherwise
// the first entry
func (r *Resolver) pick(ctx context.Context, orgs []models.Organization) models.Organization {
	stored, ok, err := r.prefs.Get(ctx, PreferenceKey)
	if err != nil {
		r.logger.Warn("reading stored organization failed", zap.Error(err))
		return orgs[0]
	}
	if !ok {
		return orgs[0]
	}

	id, err := strconv.ParseInt(stored, 10, 64)
	if err != nil {
		r.logger.Debug("ignoring malformed stored organization", zap.String("value", stored))
		return orgs[0]
	}
	if org, found := find(orgs, id); found {
		return org
	}
	return orgs[0]
}

func (r *Resolver) persist(ctx context.Context, id int64) {
	if err := r.prefs.Set(ctx, PreferenceKey, strconv.FormatInt(id, 10)); err != nil {
		r.logger.Warn("persisting organization selection failed",
			zap.Int64("organization_id", id),
			zap.Error(err))
	}
}

// ChangeOrganization switches to id when it is in the last fetched list.
// Unknown ids and calls before resolution are ignored.
func (r *Resolver) ChangeOrganization(ctx context.Context, id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateResolved {
		return false
	}
	org, ok := find(r.orgs, id)
	if !ok {
		r.logger.Debug("ignoring switch to unknown organization", zap.Int64("organization_id", id))
		return false
	}

	r.current = &org
	r.persist(ctx, id)
	r.logger.Info("organization changed", zap.Int64("organization_id", id))
	return true
}

// Reload refetches the organization list while resolved. The active
// organization is refreshed in place, or replaced by the first entry when it
// disappeared. An empty list restarts resolution. A reload overtaken by a
// newer one, by Reset or by a new resolution cycle returns
// views.ErrSuperseded and changes nothing.
func (r *Resolver) Reload(ctx context.Context) ([]models.Organization, error) {
	r.mu.Lock()
	if r.state != StateResolved {
		r.mu.Unlock()
		if _, err := r.Resolve(ctx); err != nil {
			return nil, err
		}
		return r.Organizations(), nil
	}
	r.reloads++
	seq := r.reloads
	r.mu.Unlock()

	orgs, err := r.source.Organizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("tenant: reload organizations: %w", err)
	}

	r.mu.Lock()
	if seq != r.reloads || r.state != StateResolved || r.current == nil {
		r.mu.Unlock()
		r.logger.Debug("discarding superseded organization reload")
		return nil, views.ErrSuperseded
	}
	previous := r.current.ID

	if len(orgs) == 0 {
		r.orgs = nil
		r.current = nil
		r.setState(StateUnresolved)
		r.mu.Unlock()
		org, err := r.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		r.switched(previous, org)
		return r.Organizations(), nil
	}

	r.orgs = clone(orgs)
	org, ok := find(orgs, previous)
	if !ok {
		org = orgs[0]
		r.persist(ctx, org.ID)
	}
	r.current = &org
	r.mu.Unlock()
	r.switched(previous, org)
	return clone(orgs), nil
}

// switched reports a selection change made by Reload
func (r *Resolver) switched(previous int64, org models.Organization) {
	if org.ID == previous {
		return
	}
	r.logger.Info("active organization replaced",
		zap.Int64("previous_id", previous),
		zap.Int64("organization_id", org.ID))
	if r.onSwitch != nil {
		r.onSwitch(org)
	}
}

// Reset forgets the persisted selection and returns to the unresolved state
func (r *Resolver) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateFetching || r.state == StateCreating {
		return ErrResolving
	}
	if err := r.prefs.Clear(ctx, PreferenceKey); err != nil {
		return fmt.Errorf("tenant: clear stored organization: %w", err)
	}
	r.orgs = nil
	r.current = nil
	r.err = nil
	r.reloads++
	r.setState(StateUnresolved)
	return nil
}

// Current returns the active organization, or false before resolution
func (r *Resolver) Current() (models.Organization, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateResolved || r.current == nil {
		return models.Organization{}, false
	}
	return *r.current, true
}

// OrganizationID returns the active organization id, or false before resolution
func (r *Resolver) OrganizationID() (int64, bool) {
	org, ok := r.Current()
	return org.ID, ok
}

// Organizations returns the last fetched organization list
func (r *Resolver) Organizations() []models.Organization {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.orgs)
}

func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err returns the error of the last failed cycle
func (r *Resolver) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// setState must be called with mu held
func (r *Resolver) setState(s State) {
	if r.state == s {
		return
	}
	r.logger.Debug("resolution state",
		zap.Stringer("from", r.state),
		zap.Stringer("to", s))
	r.state = s
}

func find(orgs []models.Organization, id int64) (models.Organization, bool) {
	for _, o := range orgs {
		if o.ID == id {
			return o, true
		}
	}
	return models.Organization{}, false
}

func clone(orgs []models.Organization) []models.Organization {
	if orgs == nil {
		return nil
	}
	out := make([]models.Organization, len(orgs))
	copy(out, orgs)
	return out
}
