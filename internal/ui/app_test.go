package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/orgtrack/internal/db"
	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/mutation"
	"github.com/tgienger/orgtrack/internal/tenant"
	"github.com/tgienger/orgtrack/internal/ui/views"
	viewcache "github.com/tgienger/orgtrack/internal/views"
)

// flakySource fails the first n organization reads
type flakySource struct {
	tenant.Source
	failures int
}

func (s *flakySource) Organizations(ctx context.Context) ([]models.Organization, error) {
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("connection refused")
	}
	return s.Source.Organizations(ctx)
}

func newTestApp(t *testing.T, failures int) (*App, *db.DB) {
	t.Helper()
	local, err := db.New(db.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	ctx := context.Background()
	prefs := local.Settings()
	resolver := tenant.NewResolver(&flakySource{Source: local, failures: failures}, prefs)
	cache := viewcache.NewCache()

	app := NewApp(Deps{
		Env: views.Env{
			Ctx:         ctx,
			Reader:      viewcache.NewReader(local, cache),
			Coordinator: mutation.New(local, cache, resolver),
			Author:      "user@personal.local",
		},
		Resolver:    resolver,
		Preferences: prefs,
	})
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app, local
}

func TestAppProvisionsDefaultOrganization(t *testing.T) {
	app, local := newTestApp(t, 0)
	assert.Equal(t, ScreenResolving, app.Screen())
	assert.Contains(t, app.View(), "Loading workspace")

	_, cmd := app.Update(app.Init()())
	require.NotNil(t, cmd)
	assert.Equal(t, ScreenProjects, app.Screen())
	assert.Equal(t, "My Workspace", app.org.Name)

	orgs, err := local.Organizations(context.Background())
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "my-workspace", orgs[0].Slug)
}

func TestAppBlocksUntilResolved(t *testing.T) {
	app, _ := newTestApp(t, 1)

	app.Update(app.Init()())
	assert.Equal(t, ScreenFailed, app.Screen())
	assert.Contains(t, app.View(), "Could not load your workspace")

	// project keys are inert while blocked
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.Equal(t, ScreenFailed, app.Screen())

	_, retry := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Equal(t, ScreenResolving, app.Screen())
	require.NotNil(t, retry)
	app.Update(retry())
	assert.Equal(t, ScreenProjects, app.Screen())
}

func TestAppRemembersOpenedProject(t *testing.T) {
	app, local := newTestApp(t, 0)
	ctx := context.Background()
	app.Update(app.Init()())

	res, err := local.CreateProject(ctx, models.CreateProjectInput{OrganizationID: app.org.ID, Name: "Launch"})
	require.NoError(t, err)
	project := *res.Entity

	_, cmd := app.Update(views.SelectedProject{Project: project})
	assert.Equal(t, ScreenTasks, app.Screen())
	assert.Nil(t, app.remember(project.ID)())

	stored, ok, err := local.Settings().Get(ctx, LastProjectKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", stored)
	require.NotNil(t, cmd)

	msg := app.restore(app.org)()
	restored, ok := msg.(restoredMsg)
	require.True(t, ok)
	assert.Equal(t, project.ID, restored.project.ID)

	app.Update(views.BackToProjects{})
	assert.Equal(t, ScreenProjects, app.Screen())
}

func TestAppSwitchesOrganization(t *testing.T) {
	app, local := newTestApp(t, 0)
	ctx := context.Background()
	app.Update(app.Init()())

	res, err := local.CreateOrganization(ctx, models.CreateOrganizationInput{Name: "Globex", ContactEmail: "it@globex.test"})
	require.NoError(t, err)
	globex := *res.Entity

	app.Update(views.OpenSwitcher{})
	require.Equal(t, ScreenOrganizations, app.Screen())
	// the switcher reload makes the new organization known to the resolver
	app.Update(app.switcher.Init()())

	_, cmd := app.Update(views.SelectedOrganization{Organization: globex})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, ScreenProjects, app.Screen())
	active, ok := app.deps.Resolver.OrganizationID()
	require.True(t, ok)
	assert.Equal(t, globex.ID, active)

	stored, ok, err := local.Settings().Get(ctx, tenant.PreferenceKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", stored)
}

func TestAppFollowsReplacedOrganization(t *testing.T) {
	app, local := newTestApp(t, 0)
	ctx := context.Background()
	app.Update(app.Init()())

	project, err := local.CreateProject(ctx, models.CreateProjectInput{OrganizationID: app.org.ID, Name: "Launch"})
	require.NoError(t, err)
	app.Update(views.SelectedProject{Project: *project.Entity})
	require.Equal(t, ScreenTasks, app.Screen())

	globex, err := local.CreateOrganization(ctx, models.CreateOrganizationInput{Name: "Globex", ContactEmail: "it@globex.test"})
	require.NoError(t, err)

	_, cmd := app.Update(OrganizationReplaced{Organization: *globex.Entity})
	require.NotNil(t, cmd)
	assert.Equal(t, ScreenProjects, app.Screen())
	assert.Nil(t, app.taskBoard)
	assert.Equal(t, globex.Entity.ID, app.org.ID)

	// the same organization again is a no-op
	_, cmd = app.Update(OrganizationReplaced{Organization: *globex.Entity})
	assert.Nil(t, cmd)
}
