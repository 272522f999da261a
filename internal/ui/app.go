package ui

import (
	"errors"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/tenant"
	"github.com/tgienger/orgtrack/internal/ui/styles"
	"github.com/tgienger/orgtrack/internal/ui/views"
)

// LastProjectKey is the preference holding the project opened last
const LastProjectKey = "lastProjectId"

// Screen is the currently active screen
type Screen int

const (
	ScreenResolving Screen = iota
	ScreenFailed
	ScreenProjects
	ScreenTasks
	ScreenOrganizations
)

// OrganizationReplaced reports that the resolver moved the active
// organization on its own, usually because the previous one was removed
type OrganizationReplaced struct {
	Organization models.Organization
}

// Deps are the collaborators of the App
type Deps struct {
	Env         views.Env
	Resolver    *tenant.Resolver
	Preferences tenant.Preferences
	Logger      *zap.Logger
}

type App struct {
	deps   Deps
	logger *zap.Logger
	styles *styles.Styles

	screen     Screen
	org        models.Organization
	resolveErr error

	projectList *views.ProjectListView
	taskBoard   *views.TaskBoardView
	switcher    *views.OrganizationListView

	width  int
	height int
}

type resolvedMsg struct {
	org models.Organization
	err error
}

type restoredMsg struct {
	project models.Project
}

type orgChangedMsg struct {
	org models.Organization
	ok  bool
}

func NewApp(deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		deps:        deps,
		logger:      logger,
		styles:      styles.NewStyles(),
		screen:      ScreenResolving,
		projectList: views.NewProjectListView(deps.Env),
	}
}

// Screen returns the active screen
func (a *App) Screen() Screen {
	return a.screen
}

func (a *App) Init() tea.Cmd {
	return a.resolve
}

func (a *App) resolve() tea.Msg {
	org, err := a.deps.Resolver.Resolve(a.deps.Env.Ctx)
	return resolvedMsg{org: org, err: err}
}

// restore reopens the last project when it still belongs to org
func (a *App) restore(org models.Organization) tea.Cmd {
	env := a.deps.Env
	prefs := a.deps.Preferences
	logger := a.logger
	return func() tea.Msg {
		raw, ok, err := prefs.Get(env.Ctx, LastProjectKey)
		if err != nil || !ok || raw == "" {
			return nil
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil
		}
		project, err := env.Reader.Project(env.Ctx, id)
		if err != nil || project.OrganizationID != org.ID {
			logger.Debug("last project not restored", zap.Int64("project_id", id), zap.Error(err))
			return nil
		}
		return restoredMsg{project: *project}
	}
}

// remember stores the opened project; id 0 clears it
func (a *App) remember(id int64) tea.Cmd {
	env := a.deps.Env
	prefs := a.deps.Preferences
	logger := a.logger
	return func() tea.Msg {
		var err error
		if id == 0 {
			err = prefs.Clear(env.Ctx, LastProjectKey)
		} else {
			err = prefs.Set(env.Ctx, LastProjectKey, strconv.FormatInt(id, 10))
		}
		if err != nil {
			logger.Warn("storing last project failed", zap.Error(err))
		}
		return nil
	}
}

func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

func (a *App) openProject(project models.Project) tea.Cmd {
	a.screen = ScreenTasks
	a.taskBoard = views.NewTaskBoardView(a.deps.Env, project)
	return tea.Batch(a.taskBoard.Init(), a.resize(), a.remember(project.ID))
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.projectList.Update(msg)

	case resolvedMsg:
		if msg.err != nil {
			a.screen = ScreenFailed
			a.resolveErr = msg.err
			return a, nil
		}
		a.org = msg.org
		a.resolveErr = nil
		a.screen = ScreenProjects
		return a, tea.Batch(a.projectList.SetOrganization(msg.org), a.restore(msg.org))

	case restoredMsg:
		if a.screen == ScreenProjects {
			return a, a.openProject(msg.project)
		}
		return a, nil

	case views.SelectedProject:
		return a, a.openProject(msg.Project)

	case views.BackToProjects:
		a.screen = ScreenProjects
		a.taskBoard = nil
		return a, tea.Batch(a.projectList.Init(), a.resize(), a.remember(0))

	case views.OpenSwitcher:
		a.screen = ScreenOrganizations
		a.switcher = views.NewOrganizationListView(a.deps.Env, a.deps.Resolver)
		return a, tea.Batch(a.switcher.Init(), a.resize())

	case views.SelectedOrganization:
		resolver := a.deps.Resolver
		ctx := a.deps.Env.Ctx
		org := msg.Organization
		return a, func() tea.Msg {
			return orgChangedMsg{org: org, ok: resolver.ChangeOrganization(ctx, org.ID)}
		}

	case orgChangedMsg:
		if !msg.ok {
			a.logger.Warn("organization switch refused", zap.Int64("organization_id", msg.org.ID))
			return a, nil
		}
		a.org = msg.org
		a.screen = ScreenProjects
		a.switcher = nil
		return a, tea.Batch(a.projectList.SetOrganization(msg.org), a.resize(), a.remember(0))

	case OrganizationReplaced:
		if msg.Organization.ID == a.org.ID || a.screen == ScreenResolving || a.screen == ScreenFailed {
			return a, nil
		}
		a.logger.Info("active organization replaced", zap.Int64("organization_id", msg.Organization.ID))
		a.org = msg.Organization
		if a.screen == ScreenTasks {
			a.screen = ScreenProjects
			a.taskBoard = nil
		}
		return a, tea.Batch(a.projectList.SetOrganization(msg.Organization), a.resize(), a.remember(0))

	case tea.KeyMsg:
		switch a.screen {
		case ScreenResolving:
			if msg.String() == "ctrl+c" {
				return a, tea.Quit
			}
			return a, nil
		case ScreenFailed:
			switch msg.String() {
			case "r":
				a.screen = ScreenResolving
				return a, a.resolve
			case "q", "ctrl+c", "esc":
				return a, tea.Quit
			}
			return a, nil
		}
	}

	var cmd tea.Cmd
	switch a.screen {
	case ScreenProjects:
		_, cmd = a.projectList.Update(msg)
	case ScreenTasks:
		if a.taskBoard != nil {
			_, cmd = a.taskBoard.Update(msg)
		}
	case ScreenOrganizations:
		if a.switcher != nil {
			_, cmd = a.switcher.Update(msg)
		}
	}
	return a, cmd
}

func (a *App) View() string {
	switch a.screen {
	case ScreenResolving:
		return a.center(a.styles.TitleMuted.Render("Loading workspace..."))
	case ScreenFailed:
		return a.renderFailed()
	case ScreenTasks:
		if a.taskBoard != nil {
			return a.taskBoard.View()
		}
	case ScreenOrganizations:
		if a.switcher != nil {
			return a.switcher.View()
		}
	}
	return a.projectList.View()
}

func (a *App) center(content string) string {
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}

// renderFailed blocks the app until the organization resolves
func (a *App) renderFailed() string {
	s := a.styles
	detail := "Unknown error"
	var resErr *tenant.ResolutionError
	switch {
	case errors.As(a.resolveErr, &resErr) && resErr.Message != "":
		detail = resErr.Message
	case a.resolveErr != nil:
		detail = a.resolveErr.Error()
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Could not load your workspace"),
		"",
		s.TitleMuted.Render(detail),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" R - Retry "),
			"  ",
			s.Button.Render(" Q - Quit "),
		),
	)
	return a.center(s.Panel.Render(content))
}
