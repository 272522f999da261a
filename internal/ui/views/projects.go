package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/mutation"
	"github.com/tgienger/orgtrack/internal/ui/keys"
	"github.com/tgienger/orgtrack/internal/ui/styles"
	viewcache "github.com/tgienger/orgtrack/internal/views"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string { return i.project.Name }

func (i projectItem) Description() string {
	p := i.project
	summary := fmt.Sprintf("%s · %d tasks · %.0f%% done", p.Status, p.TaskCount, p.CompletionRate)
	if p.Description == "" {
		return summary
	}
	return p.Description + " · " + summary
}

func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	width := max(d.width-4, 20)
	titleStyle := d.styles.ListItem.Width(width)
	descStyle := d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	if index == m.Index() {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(p.Title()), descStyle.Render(p.Description()))
}

type projectsLoadedMsg struct {
	ticket   viewcache.Ticket
	projects []models.Project
	stats    models.OrganizationStats
	err      error
}

type projectMutatedMsg struct {
	outcome mutation.Outcome[models.Project]
	err     error
	created bool
}

// ProjectListView lists the projects of the active organization
type ProjectListView struct {
	env      Env
	org      models.Organization
	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool
	stats    models.OrganizationStats
	flash    flash

	// the same list slot serves every organization
	seq viewcache.Sequencer

	creating   bool
	editTarget *models.Project // nil while creating
	newName    textinput.Model
	newDesc    textinput.Model
	newStatus  int // index into models.ProjectStatuses
	focusIdx   int // 0=name, 1=desc, 2=status, 3=confirm

	confirmingDelete bool
	deleteTarget     models.Project

	showHelpPopup bool
}

func NewProjectListView(env Env) *ProjectListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 200

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 500

	delegate := &projectDelegate{styles: s, width: styles.MaxWidth}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		env:      env,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
		newDesc:  newDesc,
	}
}

// SetOrganization switches the list to org and loads its projects. A load
// still running for the previous organization is ignored when it lands.
func (v *ProjectListView) SetOrganization(org models.Organization) tea.Cmd {
	v.org = org
	v.loaded = false
	v.flash = flash{}
	v.list.Title = org.Name
	v.list.SetItems(nil)
	return v.load()
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.load()
}

func (v *ProjectListView) load() tea.Cmd {
	ticket := v.seq.Next()
	orgID := v.org.ID
	env := v.env
	return func() tea.Msg {
		projects, err := env.Reader.Projects(env.Ctx, orgID)
		if err != nil {
			return projectsLoadedMsg{ticket: ticket, err: err}
		}
		stats, err := env.Reader.OrganizationStats(env.Ctx, orgID)
		return projectsLoadedMsg{ticket: ticket, projects: projects, stats: stats, err: err}
	}
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-8)
		return v, nil

	case projectsLoadedMsg:
		if !msg.ticket.Current() {
			return v, nil
		}
		if f, failed := loadFlash(msg.err); failed {
			v.flash = f
			v.loaded = true
			return v, nil
		}
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
		}
		v.list.SetItems(items)
		v.stats = msg.stats
		v.loaded = true
		return v, nil

	case projectMutatedMsg:
		v.flash = outcomeFlash(msg.outcome.Success, msg.outcome.Message, msg.err)
		if !msg.outcome.Success {
			return v, nil
		}
		v.creating = false
		v.editTarget = nil
		v.confirmingDelete = false
		if msg.created && msg.outcome.Entity != nil {
			project := *msg.outcome.Entity
			return v, tea.Batch(v.load(), func() tea.Msg { return SelectedProject{Project: project} })
		}
		return v, v.load()

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Switcher):
			return v, func() tea.Msg { return OpenSwitcher{} }
		case key.Matches(msg, v.keys.Refresh):
			v.env.Reader.Cache().Forget(viewcache.Projects(v.org.ID), viewcache.OrganizationStats(v.org.ID))
			return v, v.load()
		case key.Matches(msg, v.keys.New):
			v.openForm(nil)
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Edit):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.openForm(&item.project)
				return v, textinput.Blink
			}
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg { return SelectedProject{Project: item.project} }
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTarget = item.project
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		target := v.deleteTarget
		env := v.env
		return v, func() tea.Msg {
			out, err := env.Coordinator.DeleteProject(env.Ctx, models.DeleteProjectInput{
				ID:             target.ID,
				OrganizationID: target.OrganizationID,
			})
			return projectMutatedMsg{outcome: out, err: err}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

// openForm shows the project form, prefilled from target when editing
func (v *ProjectListView) openForm(target *models.Project) {
	v.creating = true
	v.editTarget = target
	v.flash = flash{}
	v.focusIdx = 0
	v.newName.Reset()
	v.newDesc.Reset()
	v.newStatus = 0
	if target != nil {
		v.newName.SetValue(target.Name)
		v.newDesc.SetValue(target.Description)
		for i, st := range models.ProjectStatuses {
			if st == target.Status {
				v.newStatus = i
			}
		}
	}
	v.updateFocus()
}

func (v *ProjectListView) submit() tea.Cmd {
	name := v.newName.Value()
	desc := strings.TrimSpace(v.newDesc.Value())
	status := models.ProjectStatuses[v.newStatus]
	env := v.env

	if target := v.editTarget; target != nil {
		in := models.UpdateProjectInput{
			ID:             target.ID,
			OrganizationID: target.OrganizationID,
			Name:           &name,
			Description:    &desc,
			Status:         &status,
		}
		return func() tea.Msg {
			out, err := env.Coordinator.UpdateProject(env.Ctx, in)
			return projectMutatedMsg{outcome: out, err: err}
		}
	}

	in := models.CreateProjectInput{
		OrganizationID: v.org.ID,
		Name:           name,
		Description:    desc,
		Status:         status,
	}
	return func() tea.Msg {
		out, err := env.Coordinator.CreateProject(env.Ctx, in)
		return projectMutatedMsg{outcome: out, err: err, created: true}
	}
}

func (v *ProjectListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		v.editTarget = nil
		v.flash = flash{}
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.submit()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 3) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 4
		v.updateFocus()
		return v, nil

	case v.focusIdx == 2 && key.Matches(msg, v.keys.Left):
		v.newStatus = (v.newStatus + len(models.ProjectStatuses) - 1) % len(models.ProjectStatuses)
		return v, nil

	case v.focusIdx == 2 && key.Matches(msg, v.keys.Right):
		v.newStatus = (v.newStatus + 1) % len(models.ProjectStatuses)
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 3 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.submit()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	}
	return v, cmd
}

func (v *ProjectListView) updateFocus() {
	v.newName.Blur()
	v.newDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newDesc.Focus()
	}
}

func (v *ProjectListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.creating {
		return v.renderCreateForm()
	}
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading projects...")
	}
	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		v.list.View(),
		v.renderStats(),
		v.flash.render(v.styles),
		v.renderHelp(),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderStats() string {
	st := v.stats
	return v.styles.TitleMuted.Render(fmt.Sprintf("  %d projects (%d active, %d completed) · %d/%d tasks done (%.0f%%)",
		st.TotalProjects, st.ActiveProjects, st.CompletedProjects,
		st.CompletedTasks, st.TotalTasks, st.CompletionRate()))
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render(v.org.Name),
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
		"",
		v.flash.render(s),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	descStyle := s.Input
	statusStyle := s.Chip
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		statusStyle = s.ChipOn
	case 3:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)
	title, button := "New Project", " Create "
	if v.editTarget != nil {
		title, button = "Edit Project", " Save "
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(title),
		s.Breadcrumb.Render(v.org.Name),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
		"",
		"Status:",
		statusStyle.Render("‹ "+string(models.ProjectStatuses[v.newStatus])+" ›"),
		"",
		btnStyle.Render(button),
		"",
		v.flash.render(s),
		s.TitleMuted.Render("Tab: next • ←/→: status • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s edit • %s del • %s orgs • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("o"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *ProjectListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Keyboard Shortcuts"),
		"",
		s.HelpKey.Render("↵")+"      open project",
		s.HelpKey.Render("n")+"      new project",
		s.HelpKey.Render("e")+"      edit project",
		s.HelpKey.Render("d")+"      delete project",
		s.HelpKey.Render("/")+"      filter by name",
		s.HelpKey.Render("o")+"      switch organization",
		s.HelpKey.Render("r")+"      refresh",
		s.HelpKey.Render("q")+"      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Panel.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q and all of its tasks will be removed.", v.deleteTarget.Name)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
		v.flash.render(s),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
