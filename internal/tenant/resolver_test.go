package tenant

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/views"
)

type fakeSource struct {
	organizations func(ctx context.Context, call int) ([]models.Organization, error)
	create        func(ctx context.Context, in models.CreateOrganizationInput) (*models.MutationResult[models.Organization], error)

	listCalls   atomic.Int32
	createCalls atomic.Int32
}

func (f *fakeSource) Organizations(ctx context.Context) ([]models.Organization, error) {
	n := int(f.listCalls.Add(1))
	return f.organizations(ctx, n)
}

func (f *fakeSource) CreateOrganization(ctx context.Context, in models.CreateOrganizationInput) (*models.MutationResult[models.Organization], error) {
	f.createCalls.Add(1)
	return f.create(ctx, in)
}

func fixed(orgs ...models.Organization) func(context.Context, int) ([]models.Organization, error) {
	return func(context.Context, int) ([]models.Organization, error) {
		return orgs, nil
	}
}

var (
	acme   = models.Organization{ID: 1, Name: "Acme", Slug: "acme"}
	globex = models.Organization{ID: 2, Name: "Globex", Slug: "globex"}
)

func TestResolvePicksFirstOrganization(t *testing.T) {
	src := &fakeSource{organizations: fixed(acme, globex)}
	prefs := NewMemoryPreferences()
	r := NewResolver(src, prefs)

	org, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, acme, org)
	assert.Equal(t, StateResolved, r.State())

	stored, ok, err := prefs.Get(context.Background(), PreferenceKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", stored)

	// resolved state answers without another fetch
	_, err = r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.listCalls.Load())
}

func TestResolveHonoursStoredOrganization(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   models.Organization
	}{
		{"known id", "2", globex},
		{"unknown id", "99", acme},
		{"malformed id", "globex", acme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := NewMemoryPreferences()
			require.NoError(t, prefs.Set(context.Background(), PreferenceKey, tt.stored))
			r := NewResolver(&fakeSource{organizations: fixed(acme, globex)}, prefs)

			org, err := r.Resolve(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, org)

			stored, _, _ := prefs.Get(context.Background(), PreferenceKey)
			assert.Equal(t, strconv.FormatInt(tt.want.ID, 10), stored)
		})
	}
}

func TestConcurrentResolveCreatesOnce(t *testing.T) {
	release := make(chan struct{})
	created := models.Organization{ID: 10, Name: "My Workspace", Slug: "my-workspace"}

	src := &fakeSource{
		organizations: fixed(),
		create: func(_ context.Context, in models.CreateOrganizationInput) (*models.MutationResult[models.Organization], error) {
			<-release
			assert.Equal(t, DefaultOrganization, in)
			return &models.MutationResult[models.Organization]{Success: true, Entity: &created}, nil
		},
	}
	r := NewResolver(src, NewMemoryPreferences())

	const callers = 8
	var wg sync.WaitGroup
	ids := make([]int64, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			org, err := r.Resolve(context.Background())
			ids[i], errs[i] = org.ID, err
		}(i)
	}

	require.Eventually(t, func() bool { return r.State() == StateCreating }, time.Second, time.Millisecond)
	_, ok := r.Current()
	assert.False(t, ok)

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), src.createCalls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, int64(10), ids[i])
	}
	assert.Equal(t, []models.Organization{created}, r.Organizations())
}

func TestResolveFetchFailure(t *testing.T) {
	src := &fakeSource{
		organizations: func(_ context.Context, call int) ([]models.Organization, error) {
			if call == 1 {
				return nil, errors.New("connection refused")
			}
			return []models.Organization{acme}, nil
		},
	}
	r := NewResolver(src, NewMemoryPreferences())

	_, err := r.Resolve(context.Background())
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "fetch", resErr.Op)
	assert.Equal(t, StateFailed, r.State())
	assert.Equal(t, err, r.Err())

	_, ok := r.OrganizationID()
	assert.False(t, ok)

	// next call starts a new cycle
	org, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, acme, org)
	assert.NoError(t, r.Err())
}

func TestResolveCreationRejected(t *testing.T) {
	src := &fakeSource{
		organizations: fixed(),
		create: func(context.Context, models.CreateOrganizationInput) (*models.MutationResult[models.Organization], error) {
			return &models.MutationResult[models.Organization]{Message: "Slug already taken"}, nil
		},
	}
	r := NewResolver(src, NewMemoryPreferences())

	_, err := r.Resolve(context.Background())
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "create", resErr.Op)
	assert.Equal(t, "Slug already taken", resErr.Message)
	assert.Equal(t, StateFailed, r.State())
}

func TestResolveCreationTransportFailure(t *testing.T) {
	boom := errors.New("timeout")
	src := &fakeSource{
		organizations: fixed(),
		create: func(context.Context, models.CreateOrganizationInput) (*models.MutationResult[models.Organization], error) {
			return nil, boom
		},
	}
	r := NewResolver(src, NewMemoryPreferences(), WithDefaultOrganization(models.CreateOrganizationInput{
		Name: "Team", ContactEmail: "team@example.com", Slug: "team",
	}))

	_, err := r.Resolve(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestWaiterAbandonsFlight(t *testing.T) {
	release := make(chan struct{})
	src := &fakeSource{
		organizations: func(context.Context, int) ([]models.Organization, error) {
			<-release
			return []models.Organization{acme}, nil
		},
	}
	r := NewResolver(src, NewMemoryPreferences())

	done := make(chan error, 1)
	go func() {
		_, err := r.Resolve(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return r.State() == StateFetching }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Resolve(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateResolved, r.State())
}

func TestChangeOrganization(t *testing.T) {
	prefs := NewMemoryPreferences()
	r := NewResolver(&fakeSource{organizations: fixed(acme, globex)}, prefs)
	ctx := context.Background()

	assert.False(t, r.ChangeOrganization(ctx, 2), "switch before resolution")

	_, err := r.Resolve(ctx)
	require.NoError(t, err)

	assert.False(t, r.ChangeOrganization(ctx, 99))
	id, _ := r.OrganizationID()
	assert.Equal(t, int64(1), id)

	assert.True(t, r.ChangeOrganization(ctx, 2))
	id, _ = r.OrganizationID()
	assert.Equal(t, int64(2), id)

	stored, _, _ := prefs.Get(ctx, PreferenceKey)
	assert.Equal(t, "2", stored)
}

func TestReload(t *testing.T) {
	renamed := acme
	renamed.Name = "Acme Corp"

	src := &fakeSource{
		organizations: func(_ context.Context, call int) ([]models.Organization, error) {
			switch call {
			case 1:
				return []models.Organization{acme, globex}, nil
			case 2:
				return []models.Organization{globex, renamed}, nil
			default:
				return []models.Organization{globex}, nil
			}
		},
	}
	prefs := NewMemoryPreferences()
	r := NewResolver(src, prefs)
	ctx := context.Background()

	_, err := r.Resolve(ctx)
	require.NoError(t, err)

	orgs, err := r.Reload(ctx)
	require.NoError(t, err)
	assert.Len(t, orgs, 2)
	cur, _ := r.Current()
	assert.Equal(t, "Acme Corp", cur.Name)

	// the active organization disappeared
	_, err = r.Reload(ctx)
	require.NoError(t, err)
	cur, _ = r.Current()
	assert.Equal(t, globex, cur)
	stored, _, _ := prefs.Get(ctx, PreferenceKey)
	assert.Equal(t, "2", stored)
}

func TestReloadEmptyListRestartsResolution(t *testing.T) {
	created := models.Organization{ID: 5, Name: "My Workspace"}
	src := &fakeSource{
		organizations: func(_ context.Context, call int) ([]models.Organization, error) {
			if call == 1 {
				return []models.Organization{acme}, nil
			}
			return nil, nil
		},
		create: func(context.Context, models.CreateOrganizationInput) (*models.MutationResult[models.Organization], error) {
			return &models.MutationResult[models.Organization]{Success: true, Entity: &created}, nil
		},
	}
	r := NewResolver(src, NewMemoryPreferences())
	ctx := context.Background()

	_, err := r.Resolve(ctx)
	require.NoError(t, err)

	orgs, err := r.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Organization{created}, orgs)
	assert.Equal(t, int32(1), src.createCalls.Load())
}

func TestReloadLastRequestWins(t *testing.T) {
	slowStarted := make(chan struct{})
	release := make(chan struct{})

	src := &fakeSource{
		organizations: func(_ context.Context, call int) ([]models.Organization, error) {
			switch call {
			case 1:
				return []models.Organization{acme}, nil
			case 2:
				close(slowStarted)
				<-release
				return []models.Organization{acme}, nil
			default:
				return []models.Organization{acme, globex}, nil
			}
		},
	}
	r := NewResolver(src, NewMemoryPreferences())
	ctx := context.Background()
	_, err := r.Resolve(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := r.Reload(ctx)
		done <- err
	}()
	<-slowStarted

	orgs, err := r.Reload(ctx)
	require.NoError(t, err)
	assert.Len(t, orgs, 2)

	close(release)
	assert.ErrorIs(t, <-done, views.ErrSuperseded)
	assert.Len(t, r.Organizations(), 2)
}

func TestResetDuringReload(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	src := &fakeSource{
		organizations: func(_ context.Context, call int) ([]models.Organization, error) {
			switch call {
			case 2:
				close(started)
				<-release
				return []models.Organization{globex}, nil
			default:
				return []models.Organization{acme, globex}, nil
			}
		},
	}
	r := NewResolver(src, NewMemoryPreferences())
	ctx := context.Background()
	_, err := r.Resolve(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := r.Reload(ctx)
		done <- err
	}()
	<-started

	require.NoError(t, r.Reset(ctx))
	close(release)
	assert.ErrorIs(t, <-done, views.ErrSuperseded)
	assert.Equal(t, StateUnresolved, r.State())
	assert.Empty(t, r.Organizations())

	org, err := r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, acme, org)
}

func TestReloadFromEarlierCycleIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	src := &fakeSource{
		organizations: func(_ context.Context, call int) ([]models.Organization, error) {
			switch call {
			case 2:
				close(started)
				<-release
				return []models.Organization{globex}, nil
			default:
				return []models.Organization{acme, globex}, nil
			}
		},
	}
	r := NewResolver(src, NewMemoryPreferences())
	ctx := context.Background()
	_, err := r.Resolve(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := r.Reload(ctx)
		done <- err
	}()
	<-started

	require.NoError(t, r.Reset(ctx))
	_, err = r.Resolve(ctx)
	require.NoError(t, err)

	close(release)
	assert.ErrorIs(t, <-done, views.ErrSuperseded)
	cur, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, acme, cur)
	assert.Len(t, r.Organizations(), 2)
}

func TestReloadReportsReplacedOrganization(t *testing.T) {
	src := &fakeSource{
		organizations: func(_ context.Context, call int) ([]models.Organization, error) {
			if call == 1 {
				return []models.Organization{acme, globex}, nil
			}
			return []models.Organization{globex}, nil
		},
	}
	var switched []models.Organization
	r := NewResolver(src, NewMemoryPreferences(), WithSwitchHook(func(org models.Organization) {
		switched = append(switched, org)
	}))
	ctx := context.Background()
	_, err := r.Resolve(ctx)
	require.NoError(t, err)

	_, err = r.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Organization{globex}, switched)

	// unchanged selection is not reported again
	_, err = r.Reload(ctx)
	require.NoError(t, err)
	assert.Len(t, switched, 1)
}

func TestFlightOutlivesStartingCaller(t *testing.T) {
	release := make(chan struct{})
	src := &fakeSource{
		organizations: func(ctx context.Context, _ int) ([]models.Organization, error) {
			<-release
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return []models.Organization{acme}, nil
		},
	}
	r := NewResolver(src, NewMemoryPreferences())

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctx)
		first <- err
	}()
	require.Eventually(t, func() bool { return r.State() == StateFetching }, time.Second, time.Millisecond)

	second := make(chan models.Organization, 1)
	go func() {
		org, _ := r.Resolve(context.Background())
		second <- org
	}()

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(release)
	assert.Equal(t, acme, <-second)
	assert.Equal(t, StateResolved, r.State())
	assert.Equal(t, int32(1), src.listCalls.Load())
}

func TestReset(t *testing.T) {
	prefs := NewMemoryPreferences()
	r := NewResolver(&fakeSource{organizations: fixed(acme, globex)}, prefs)
	ctx := context.Background()

	_, err := r.Resolve(ctx)
	require.NoError(t, err)
	require.True(t, r.ChangeOrganization(ctx, 2))

	require.NoError(t, r.Reset(ctx))
	assert.Equal(t, StateUnresolved, r.State())
	_, ok, _ := prefs.Get(ctx, PreferenceKey)
	assert.False(t, ok)

	org, err := r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, acme, org)
}

type brokenPreferences struct{}

func (brokenPreferences) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk full")
}
func (brokenPreferences) Set(context.Context, string, string) error { return errors.New("disk full") }
func (brokenPreferences) Clear(context.Context, string) error       { return errors.New("disk full") }

func TestPreferenceFailuresDoNotBlockResolution(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := NewResolver(&fakeSource{organizations: fixed(acme)}, brokenPreferences{}, WithLogger(zap.New(core)))

	org, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, acme, org)

	assert.Equal(t, 1, logs.FilterMessage("reading stored organization failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("persisting organization selection failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("organization resolved").Len())

	assert.Error(t, r.Reset(context.Background()))
}

func TestCreationIsLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	created := models.Organization{ID: 3}
	src := &fakeSource{
		organizations: fixed(),
		create: func(context.Context, models.CreateOrganizationInput) (*models.MutationResult[models.Organization], error) {
			return &models.MutationResult[models.Organization]{Success: true, Entity: &created}, nil
		},
	}
	r := NewResolver(src, NewMemoryPreferences(), WithLogger(zap.New(core)))

	_, err := r.Resolve(context.Background())
	require.NoError(t, err)

	entries := logs.FilterMessage("no organizations found, creating default organization").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "my-workspace", entries[0].ContextMap()["slug"])
}
