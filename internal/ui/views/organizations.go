package views

import (
	"context"
	"fmt"
	"io"

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

// Tenant is the organization selection the switcher reads and refreshes
type Tenant interface {
	Reload(ctx context.Context) ([]models.Organization, error)
	OrganizationID() (int64, bool)
}

type orgItem struct {
	org    models.Organization
	active bool
}

func (i orgItem) Title() string { return i.org.Name }

func (i orgItem) Description() string {
	return fmt.Sprintf("%s · %d projects (%d active)", i.org.Slug, i.org.ProjectCount, i.org.ActiveProjectCount)
}

func (i orgItem) FilterValue() string { return i.org.Name }

type orgDelegate struct {
	styles *styles.Styles
	width  int
}

func (d orgDelegate) Height() int                               { return 2 }
func (d orgDelegate) Spacing() int                              { return 1 }
func (d orgDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d orgDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	o, ok := item.(orgItem)
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

	title := o.Title()
	if o.active {
		title = "● " + title
	}
	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(title), descStyle.Render(o.Description()))
}

type orgsLoadedMsg struct {
	orgs []models.Organization
	err  error
}

type orgCreatedMsg struct {
	outcome mutation.Outcome[models.Organization]
	err     error
}

// OrganizationListView switches the active organization and creates new ones
type OrganizationListView struct {
	env      Env
	tenant   Tenant
	list     list.Model
	delegate *orgDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool
	flash    flash

	creating bool
	newName  textinput.Model
	newEmail textinput.Model
	focusIdx int // 0=name, 1=email, 2=confirm
	showHelp bool
}

func NewOrganizationListView(env Env, tenant Tenant) *OrganizationListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Organization name"
	newName.CharLimit = 200

	newEmail := textinput.New()
	newEmail.Placeholder = "Contact email"
	newEmail.CharLimit = 254

	delegate := &orgDelegate{styles: s, width: styles.MaxWidth}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Organizations"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &OrganizationListView{
		env:      env,
		tenant:   tenant,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
		newEmail: newEmail,
	}
}

func (v *OrganizationListView) Init() tea.Cmd {
	return v.load
}

// load reads the organization list view, which is bound to the tenant's
// reload so invalidations also refresh the tenant's copy
func (v *OrganizationListView) load() tea.Msg {
	orgs, err := viewcache.Get(v.env.Ctx, v.env.Reader.Cache(), viewcache.Organizations(), v.tenant.Reload)
	return orgsLoadedMsg{orgs: orgs, err: err}
}

func (v *OrganizationListView) setItems(orgs []models.Organization) {
	active, _ := v.tenant.OrganizationID()
	items := make([]list.Item, len(orgs))
	selected := 0
	for i, o := range orgs {
		items[i] = orgItem{org: o, active: o.ID == active}
		if o.ID == active {
			selected = i
		}
	}
	v.list.SetItems(items)
	v.list.Select(selected)
}

func (v *OrganizationListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case orgsLoadedMsg:
		if f, failed := loadFlash(msg.err); failed {
			v.flash = f
			v.loaded = true
			return v, nil
		}
		if msg.err == nil {
			v.setItems(msg.orgs)
			v.loaded = true
		}
		return v, nil

	case orgCreatedMsg:
		v.flash = outcomeFlash(msg.outcome.Success, msg.outcome.Message, msg.err)
		if !msg.outcome.Success {
			return v, nil
		}
		v.creating = false
		return v, v.load

	case tea.KeyMsg:
		if v.showHelp {
			v.showHelp = false
			return v, nil
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
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToProjects{} }
		case key.Matches(msg, v.keys.Help):
			v.showHelp = true
			return v, nil
		case key.Matches(msg, v.keys.Refresh):
			v.env.Reader.Cache().Forget(viewcache.Organizations())
			return v, v.load
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.flash = flash{}
			v.focusIdx = 0
			v.newName.Reset()
			v.newEmail.Reset()
			v.updateFocus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(orgItem); ok {
				return v, func() tea.Msg { return SelectedOrganization{Organization: item.org} }
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *OrganizationListView) submit() tea.Cmd {
	in := models.CreateOrganizationInput{
		Name:         v.newName.Value(),
		ContactEmail: v.newEmail.Value(),
		Slug:         models.Slugify(v.newName.Value()),
	}
	env := v.env
	return func() tea.Msg {
		out, err := env.Coordinator.CreateOrganization(env.Ctx, in)
		return orgCreatedMsg{outcome: out, err: err}
	}
}

func (v *OrganizationListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		v.flash = flash{}
		return v, nil
	case key.Matches(msg, v.keys.Save):
		return v, v.submit()
	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return v, nil
	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 2 {
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
		v.newEmail, cmd = v.newEmail.Update(msg)
	}
	return v, cmd
}

func (v *OrganizationListView) updateFocus() {
	v.newName.Blur()
	v.newEmail.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newEmail.Focus()
	}
}

func (v *OrganizationListView) View() string {
	s := v.styles
	if v.showHelp {
		content := lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render("Keyboard Shortcuts"),
			"",
			s.HelpKey.Render("↵")+"      switch to organization",
			s.HelpKey.Render("n")+"      new organization",
			s.HelpKey.Render("r")+"      refresh",
			s.HelpKey.Render("esc")+"    back",
			"",
			s.TitleMuted.Render("Press any key to close"),
		)
		return styles.CenterView(s.Panel.Render(content), v.width, v.height)
	}
	if v.creating {
		return v.renderCreateForm()
	}
	if !v.loaded {
		return s.TitleMuted.Render("Loading organizations...")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		v.list.View(),
		v.flash.render(s),
		s.Help.Render(fmt.Sprintf("%s switch • %s new • %s back",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("n"),
			s.HelpKey.Render("esc"),
		)),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *OrganizationListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	emailStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		emailStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)
	slug := models.Slugify(v.newName.Value())

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Organization"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		s.TitleMuted.Render("slug: "+slug),
		"",
		"Contact email:",
		emailStyle.Width(inputWidth).Render(v.newEmail.View()),
		"",
		btnStyle.Render(" Create "),
		"",
		v.flash.render(s),
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
