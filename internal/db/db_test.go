package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/store"
	"github.com/tgienger/orgtrack/internal/tenant"
)

// stepClock advances one second per call so creation order is observable
func stepClock() func() time.Time {
	t := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Memory, WithClock(stepClock()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func mustOrg(t *testing.T, db *DB, name string) models.Organization {
	t.Helper()
	res, err := db.CreateOrganization(context.Background(), models.CreateOrganizationInput{
		Name: name, ContactEmail: "ops@example.com",
	})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	return *res.Entity
}

func mustProject(t *testing.T, db *DB, orgID int64, name string) models.Project {
	t.Helper()
	res, err := db.CreateProject(context.Background(), models.CreateProjectInput{OrganizationID: orgID, Name: name})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	return *res.Entity
}

func mustTask(t *testing.T, db *DB, in models.CreateTaskInput) models.Task {
	t.Helper()
	res, err := db.CreateTask(context.Background(), in)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	return *res.Entity
}

func TestCreateOrganizationSlugs(t *testing.T) {
	db := newTestDB(t)

	assert.Equal(t, "acme-corp", mustOrg(t, db, "Acme Corp").Slug)
	assert.Equal(t, "acme-corp-1", mustOrg(t, db, "Acme Corp").Slug)
	assert.Equal(t, "acme-corp-2", mustOrg(t, db, "Acme  Corp!").Slug)

	res, err := db.CreateOrganization(context.Background(), models.CreateOrganizationInput{
		Name: "Workspace", ContactEmail: "user@personal.local", Slug: "my-workspace",
	})
	require.NoError(t, err)
	assert.Equal(t, "Organization created successfully", res.Message)
	assert.Equal(t, "my-workspace", res.Entity.Slug)
}

func TestOrganizations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	orgs, err := db.Organizations(ctx)
	require.NoError(t, err)
	assert.Empty(t, orgs)

	zeta := mustOrg(t, db, "Zeta")
	alpha := mustOrg(t, db, "Alpha")
	mustProject(t, db, zeta.ID, "One")
	p := mustProject(t, db, zeta.ID, "Two")
	status := models.ProjectOnHold
	_, err = db.UpdateProject(ctx, models.UpdateProjectInput{ID: p.ID, Status: &status})
	require.NoError(t, err)

	orgs, err = db.Organizations(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	assert.Equal(t, alpha.ID, orgs[0].ID)
	assert.Equal(t, "Zeta", orgs[1].Name)
	assert.Equal(t, 2, orgs[1].ProjectCount)
	assert.Equal(t, 1, orgs[1].ActiveProjectCount)

	_, err = db.Organization(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateOrganization(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	acme := mustOrg(t, db, "Acme")
	mustOrg(t, db, "Globex")

	name := "Acme Inc"
	res, err := db.UpdateOrganization(ctx, models.UpdateOrganizationInput{ID: acme.ID, Name: &name})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "Acme Inc", res.Entity.Name)
	assert.Equal(t, "acme", res.Entity.Slug)

	slug := "globex"
	res, err = db.UpdateOrganization(ctx, models.UpdateOrganizationInput{ID: acme.ID, Slug: &slug})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, `Slug "globex" is already in use`, res.Message)

	res, err = db.UpdateOrganization(ctx, models.UpdateOrganizationInput{ID: 42, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Organization matching query does not exist.", res.Message)
}

func TestProjects(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := mustOrg(t, db, "Acme")

	res, err := db.CreateProject(ctx, models.CreateProjectInput{OrganizationID: 99, Name: "Lost"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Organization matching query does not exist.", res.Message)

	older := mustProject(t, db, org.ID, "Older")
	newer := mustProject(t, db, org.ID, "Newer")
	assert.Equal(t, models.ProjectActive, older.Status)
	assert.Equal(t, "Acme", older.OrganizationName)

	projects, err := db.Projects(ctx, models.ProjectQuery{OrganizationID: org.ID})
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, newer.ID, projects[0].ID)

	projects, err = db.Projects(ctx, models.ProjectQuery{OrganizationID: org.ID, Status: models.ProjectCompleted})
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestProjectStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := mustOrg(t, db, "Acme")
	p := mustProject(t, db, org.ID, "Launch")

	for _, st := range []models.TaskStatus{models.TaskTodo, models.TaskInProgress, models.TaskDone} {
		mustTask(t, db, models.CreateTaskInput{ProjectID: p.ID, Title: string(st), Status: st})
	}

	stats, err := db.ProjectStats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStats{
		ProjectID: p.ID, TotalTasks: 3, TodoTasks: 1, InProgressTasks: 1, CompletedTasks: 1, CompletionRate: 33.33,
	}, stats)

	orgStats, err := db.OrganizationStats(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, orgStats.TotalProjects)
	assert.Equal(t, 1, orgStats.ActiveProjects)
	assert.Equal(t, 3, orgStats.TotalTasks)
	assert.Equal(t, 1, orgStats.CompletedTasks)

	detail, err := db.Project(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Tasks, 3)
	assert.Equal(t, 33.33, detail.CompletionRate)

	_, err = db.ProjectStats(ctx, 404)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateTask(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	acme := mustOrg(t, db, "Acme")
	globex := mustOrg(t, db, "Globex")
	mustProject(t, db, acme.ID, "A")
	mustProject(t, db, acme.ID, "B")
	foreign := mustProject(t, db, globex.ID, "C")
	require.Equal(t, int64(3), foreign.ID)

	task := mustTask(t, db, models.CreateTaskInput{ProjectID: 1, Title: "Write spec"})
	assert.Equal(t, models.TaskTodo, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, 0, task.CommentCount)
	assert.Equal(t, acme.ID, task.OrganizationID)
	assert.Equal(t, "A", task.ProjectName)

	tests := []struct {
		name string
		in   models.CreateTaskInput
		want string
	}{
		{"organization mismatch", models.CreateTaskInput{ProjectID: 3, Title: "x", OrganizationID: acme.ID},
			"Project 3 does not belong to organization 1"},
		{"unknown project", models.CreateTaskInput{ProjectID: 77, Title: "x"},
			"Project matching query does not exist."},
		{"blank title", models.CreateTaskInput{ProjectID: 1, Title: "  "},
			"Title is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := db.CreateTask(ctx, tt.in)
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Nil(t, res.Entity)
			assert.Equal(t, tt.want, res.Message)
		})
	}

	tasks, err := db.Tasks(ctx, models.TaskQuery{ProjectID: 1})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestTasksQuery(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	acme := mustOrg(t, db, "Acme")
	globex := mustOrg(t, db, "Globex")
	a := mustProject(t, db, acme.ID, "A")
	b := mustProject(t, db, acme.ID, "B")
	c := mustProject(t, db, globex.ID, "C")

	first := mustTask(t, db, models.CreateTaskInput{ProjectID: a.ID, Title: "first", AssigneeEmail: "ana@example.com"})
	second := mustTask(t, db, models.CreateTaskInput{ProjectID: b.ID, Title: "second", Status: models.TaskDone})
	mustTask(t, db, models.CreateTaskInput{ProjectID: c.ID, Title: "elsewhere"})

	tasks, err := db.Tasks(ctx, models.TaskQuery{OrganizationID: acme.ID})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[0].ID, "newest first")
	assert.Equal(t, first.ID, tasks[1].ID)

	tasks, err = db.Tasks(ctx, models.TaskQuery{OrganizationID: acme.ID, Status: models.TaskDone})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, second.ID, tasks[0].ID)

	tasks, err = db.Tasks(ctx, models.TaskQuery{AssigneeEmail: "ana@example.com"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, first.ID, tasks[0].ID)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.TaskStatus
		want     bool
	}{
		{models.TaskTodo, models.TaskInProgress, true},
		{models.TaskTodo, models.TaskDone, true},
		{models.TaskInProgress, models.TaskTodo, true},
		{models.TaskDone, models.TaskInProgress, true},
		{models.TaskTodo, models.TaskBlocked, false},
		{models.TaskBlocked, models.TaskTodo, false},
		{models.TaskBlocked, models.TaskBlocked, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestUpdateTask(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := mustOrg(t, db, "Acme")
	other := mustOrg(t, db, "Globex")
	p := mustProject(t, db, org.ID, "A")
	task := mustTask(t, db, models.CreateTaskInput{ProjectID: p.ID, Title: "Write spec"})

	blocked := models.TaskBlocked
	res, err := db.UpdateTask(ctx, models.UpdateTaskInput{ID: task.ID, Status: &blocked, ValidateTransition: true})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Cannot transition from TODO to BLOCKED", res.Message)

	res, err = db.UpdateTask(ctx, models.UpdateTaskInput{ID: task.ID, Status: &blocked})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "Task updated successfully", res.Message)
	assert.Equal(t, models.TaskBlocked, res.Entity.Status)
	assert.Equal(t, "Write spec", res.Entity.Title)

	res, err = db.UpdateTask(ctx, models.UpdateTaskInput{ID: task.ID, Status: &blocked, OrganizationID: other.ID})
	require.NoError(t, err)
	assert.Equal(t, "Task 1 does not belong to organization 2", res.Message)

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	email := "bo@example.com"
	res, err = db.UpdateTask(ctx, models.UpdateTaskInput{ID: task.ID, AssigneeEmail: &email, DueDate: &due})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "bo@example.com", res.Entity.AssigneeEmail)
	require.NotNil(t, res.Entity.DueDate)
	assert.True(t, due.Equal(*res.Entity.DueDate))
}

func TestCommentsAndCascade(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := mustOrg(t, db, "Acme")
	p := mustProject(t, db, org.ID, "A")
	task := mustTask(t, db, models.CreateTaskInput{ProjectID: p.ID, Title: "Write spec"})

	for _, content := range []string{"first", "second"} {
		res, err := db.AddTaskComment(ctx, models.AddTaskCommentInput{
			TaskID: task.ID, Content: content, AuthorEmail: "ana@example.com",
		})
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, "Comment added successfully", res.Message)
	}

	comments, err := db.TaskComments(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content, "oldest first")

	res, err := db.UpdateTaskComment(ctx, models.UpdateTaskCommentInput{ID: comments[0].ID, Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", res.Entity.Content)

	got, err := db.Task(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentCount)
	assert.Len(t, got.Comments, 2)

	del, err := db.DeleteTaskComment(ctx, models.DeleteTaskCommentInput{ID: comments[1].ID})
	require.NoError(t, err)
	assert.True(t, del.Success)
	del, err = db.DeleteTaskComment(ctx, models.DeleteTaskCommentInput{ID: comments[1].ID})
	require.NoError(t, err)
	assert.False(t, del.Success)

	pres, err := db.DeleteProject(ctx, models.DeleteProjectInput{ID: p.ID, OrganizationID: org.ID})
	require.NoError(t, err)
	assert.Equal(t, "Project deleted successfully", pres.Message)

	_, err = db.Task(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	comments, err = db.TaskComments(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestSettings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	var prefs tenant.Preferences = db.Settings()

	_, ok, err := prefs.Get(ctx, tenant.PreferenceKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, prefs.Set(ctx, tenant.PreferenceKey, "3"))
	require.NoError(t, prefs.Set(ctx, tenant.PreferenceKey, "4"))
	v, ok, err := prefs.Get(ctx, tenant.PreferenceKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "4", v)

	require.NoError(t, prefs.Clear(ctx, tenant.PreferenceKey))
	_, ok, err = prefs.Get(ctx, tenant.PreferenceKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettingsErrors(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	db := Wrap(conn)
	ctx := context.Background()

	mock.ExpectQuery("SELECT value FROM settings").
		WithArgs(tenant.PreferenceKey).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectExec("INSERT INTO settings").
		WithArgs(tenant.PreferenceKey, "1").
		WillReturnError(errors.New("database is locked"))

	_, _, err = db.Settings().Get(ctx, tenant.PreferenceKey)
	assert.ErrorContains(t, err, "get setting organizationId: disk I/O error")

	err = db.Settings().Set(ctx, tenant.PreferenceKey, "1")
	assert.ErrorContains(t, err, "database is locked")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryErrorsAreReturned(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	db := Wrap(conn)

	mock.ExpectQuery("FROM organizations o ORDER BY").WillReturnError(errors.New("no such table: organizations"))

	_, err = db.Organizations(context.Background())
	assert.ErrorContains(t, err, "no such table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "orgtrack.db")
	db, err := New(path)
	require.NoError(t, err)
	defer db.Close()

	mustOrg(t, db, "Acme")
	assert.FileExists(t, path)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/orgtrack/orgtrack.db", path)
}
