package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/mutation"
	"github.com/tgienger/orgtrack/internal/taskfilter"
	"github.com/tgienger/orgtrack/internal/ui/keys"
	"github.com/tgienger/orgtrack/internal/ui/styles"
	viewcache "github.com/tgienger/orgtrack/internal/views"
)

type boardMode int

const (
	modeBoard boardMode = iota
	modeEditing
	modeAssignee
	modeDetail
	modeComment
	modeConfirmDelete
	modeHelp
)

type tasksLoadedMsg struct {
	tasks []models.Task
	err   error
}

type commentsLoadedMsg struct {
	taskID   int64
	comments []models.TaskComment
	err      error
}

type taskMutatedMsg struct {
	outcome mutation.Outcome[models.Task]
	err     error
}

type commentMutatedMsg struct {
	outcome mutation.Outcome[models.TaskComment]
	err     error
}

// TaskBoardView shows the tasks of one project in status columns
type TaskBoardView struct {
	env     Env
	project models.Project
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	mode    boardMode
	loaded  bool
	tasks   []models.Task
	spec    taskfilter.Spec
	columns []taskfilter.Column
	col     int
	row     int
	flash   flash

	assignee textinput.Model

	editTitle    textinput.Model
	editDesc     textarea.Model
	editAssignee textinput.Model
	editPriority int // index into models.Priorities
	editFocusIdx int // 0=title, 1=desc, 2=assignee, 3=priority, 4=save

	detailID     int64
	comments     []models.TaskComment
	commentInput textarea.Model
	deleteTarget models.Task
}

func NewTaskBoardView(env Env, project models.Project) *TaskBoardView {
	assignee := textinput.New()
	assignee.Placeholder = "assignee@example.com"
	assignee.CharLimit = 254

	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 2000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	editAssignee := textinput.New()
	editAssignee.Placeholder = "Assignee email (optional)"
	editAssignee.CharLimit = 254

	commentInput := textarea.New()
	commentInput.Placeholder = "Add a comment..."
	commentInput.CharLimit = 2000
	commentInput.SetWidth(50)
	commentInput.SetHeight(3)
	commentInput.ShowLineNumbers = false

	v := &TaskBoardView{
		env:          env,
		project:      project,
		styles:       styles.NewStyles(),
		keys:         keys.DefaultKeyMap(),
		spec:         taskfilter.Everything,
		assignee:     assignee,
		editTitle:    editTitle,
		editDesc:     editDesc,
		editAssignee: editAssignee,
		commentInput: commentInput,
	}
	v.rebuild()
	return v
}

func (v *TaskBoardView) Init() tea.Cmd {
	return v.loadTasks
}

func (v *TaskBoardView) loadTasks() tea.Msg {
	tasks, err := v.env.Reader.ProjectTasks(v.env.Ctx, v.project.ID)
	return tasksLoadedMsg{tasks: tasks, err: err}
}

func (v *TaskBoardView) loadComments(taskID int64) tea.Cmd {
	env := v.env
	return func() tea.Msg {
		comments, err := env.Reader.TaskComments(env.Ctx, taskID)
		return commentsLoadedMsg{taskID: taskID, comments: comments, err: err}
	}
}

// rebuild derives the columns from the loaded tasks and the filter and keeps
// the cursor in range
func (v *TaskBoardView) rebuild() {
	v.columns = taskfilter.Board(taskfilter.Apply(v.tasks, v.spec))
	v.col = clamp(v.col, 0, len(v.columns)-1)
	v.row = clamp(v.row, 0, max(len(v.columns[v.col].Tasks)-1, 0))
}

func (v *TaskBoardView) selected() (models.Task, bool) {
	tasks := v.columns[v.col].Tasks
	if v.row >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[v.row], true
}

// detailTask is the task open in the detail view, looked up in the
// unfiltered list so a move does not swap it for a neighbour
func (v *TaskBoardView) detailTask() (models.Task, bool) {
	for _, t := range v.tasks {
		if t.ID == v.detailID {
			return t, true
		}
	}
	return models.Task{}, false
}

func (v *TaskBoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 50)
		v.editDesc.SetWidth(inputWidth)
		v.commentInput.SetWidth(inputWidth)
		return v, nil

	case tasksLoadedMsg:
		if f, failed := loadFlash(msg.err); failed {
			v.flash = f
			return v, nil
		}
		if msg.err != nil {
			return v, nil
		}
		v.tasks = msg.tasks
		v.loaded = true
		v.rebuild()
		return v, nil

	case commentsLoadedMsg:
		if f, failed := loadFlash(msg.err); failed {
			v.flash = f
			return v, nil
		}
		if msg.taskID == v.detailID {
			v.comments = msg.comments
		}
		return v, nil

	case taskMutatedMsg:
		v.flash = outcomeFlash(msg.outcome.Success, msg.outcome.Message, msg.err)
		if !msg.outcome.Success {
			return v, nil
		}
		if v.mode == modeEditing || v.mode == modeConfirmDelete {
			v.mode = modeBoard
		}
		return v, v.loadTasks

	case commentMutatedMsg:
		v.flash = outcomeFlash(msg.outcome.Success, msg.outcome.Message, msg.err)
		if !msg.outcome.Success {
			return v, nil
		}
		v.commentInput.Reset()
		v.commentInput.Blur()
		v.mode = modeDetail
		return v, tea.Batch(v.loadComments(v.detailID), v.loadTasks)

	case tea.KeyMsg:
		switch v.mode {
		case modeHelp:
			v.mode = modeBoard
			return v, nil
		case modeConfirmDelete:
			return v.updateConfirmDelete(msg)
		case modeEditing:
			return v.updateEditing(msg)
		case modeAssignee:
			return v.updateAssignee(msg)
		case modeDetail, modeComment:
			return v.updateDetail(msg)
		}
		return v.updateBoard(msg)
	}

	return v, nil
}

func (v *TaskBoardView) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Help):
		v.mode = modeHelp
		return v, nil

	case key.Matches(msg, v.keys.Left):
		if v.col > 0 {
			v.col--
			v.rebuild()
		}
		return v, nil

	case key.Matches(msg, v.keys.Right):
		if v.col < len(v.columns)-1 {
			v.col++
			v.rebuild()
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.row > 0 {
			v.row--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.row < len(v.columns[v.col].Tasks)-1 {
			v.row++
		}
		return v, nil

	case key.Matches(msg, v.keys.FilterStatus):
		v.spec.Status = nextFilter(v.spec.Status, statusNames())
		v.rebuild()
		return v, nil

	case key.Matches(msg, v.keys.FilterPriority):
		v.spec.Priority = nextFilter(v.spec.Priority, priorityNames())
		v.rebuild()
		return v, nil

	case key.Matches(msg, v.keys.FilterAssignee):
		v.mode = modeAssignee
		v.assignee.SetValue(v.spec.AssigneeEmail)
		v.assignee.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.ClearFilters):
		v.spec = taskfilter.Everything
		v.rebuild()
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		v.env.Reader.Cache().Forget(viewcache.ProjectTasks(v.project.ID))
		return v, v.loadTasks

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.NextStatus):
		if t, ok := v.selected(); ok {
			return v, v.moveTask(t)
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.selected(); ok {
			v.deleteTarget = t
			v.mode = modeConfirmDelete
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if t, ok := v.selected(); ok {
			v.mode = modeDetail
			v.detailID = t.ID
			v.comments = nil
			return v, v.loadComments(t.ID)
		}
	}
	return v, nil
}

// nextFilter cycles All -> values[0] -> ... -> All
func nextFilter(current string, values []string) string {
	if current == "" || current == taskfilter.All {
		return values[0]
	}
	for i, val := range values {
		if val == current && i+1 < len(values) {
			return values[i+1]
		}
	}
	return taskfilter.All
}

func statusNames() []string {
	out := make([]string, len(models.TaskStatuses))
	for i, s := range models.TaskStatuses {
		out[i] = string(s)
	}
	return out
}

func priorityNames() []string {
	out := make([]string, len(models.Priorities))
	for i, p := range models.Priorities {
		out[i] = string(p)
	}
	return out
}

// nextStatus is the status a task moves to on the board
func nextStatus(s models.TaskStatus) models.TaskStatus {
	for i, st := range models.TaskStatuses {
		if st == s {
			return models.TaskStatuses[(i+1)%len(models.TaskStatuses)]
		}
	}
	return models.TaskTodo
}

func (v *TaskBoardView) moveTask(t models.Task) tea.Cmd {
	status := nextStatus(t.Status)
	in := models.UpdateTaskInput{
		ID:             t.ID,
		ProjectID:      v.project.ID,
		OrganizationID: v.project.OrganizationID,
		Status:         &status,
	}
	env := v.env
	return func() tea.Msg {
		out, err := env.Coordinator.UpdateTask(env.Ctx, in)
		return taskMutatedMsg{outcome: out, err: err}
	}
}

func (v *TaskBoardView) updateAssignee(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.assignee.Blur()
		v.mode = modeBoard
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		spec, err := taskfilter.ParseSpec(v.spec.Status, v.spec.Priority, v.assignee.Value())
		if err != nil {
			v.flash = flash{text: err.Error(), failed: true}
			return v, nil
		}
		v.spec = spec
		v.assignee.Blur()
		v.mode = modeBoard
		v.rebuild()
		return v, nil
	}
	var cmd tea.Cmd
	v.assignee, cmd = v.assignee.Update(msg)
	return v, cmd
}

func (v *TaskBoardView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		in := models.DeleteTaskInput{
			ID:             v.deleteTarget.ID,
			ProjectID:      v.project.ID,
			OrganizationID: v.project.OrganizationID,
		}
		env := v.env
		return v, func() tea.Msg {
			out, err := env.Coordinator.DeleteTask(env.Ctx, in)
			return taskMutatedMsg{outcome: out, err: err}
		}
	case "n", "N", "esc":
		v.mode = modeBoard
	}
	return v, nil
}

func (v *TaskBoardView) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.mode == modeComment {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.commentInput.Blur()
			v.mode = modeDetail
			return v, nil
		case key.Matches(msg, v.keys.Save):
			return v, v.submitComment()
		}
		var cmd tea.Cmd
		v.commentInput, cmd = v.commentInput.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = modeBoard
		v.comments = nil
	case key.Matches(msg, v.keys.Comment):
		v.mode = modeComment
		v.commentInput.Focus()
		return v, textarea.Blink
	case key.Matches(msg, v.keys.NextStatus):
		if t, ok := v.detailTask(); ok {
			return v, v.moveTask(t)
		}
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *TaskBoardView) submitComment() tea.Cmd {
	t, ok := v.detailTask()
	if !ok {
		return nil
	}
	in := models.AddTaskCommentInput{
		TaskID:         t.ID,
		ProjectID:      v.project.ID,
		OrganizationID: v.project.OrganizationID,
		Content:        v.commentInput.Value(),
		AuthorEmail:    v.env.Author,
	}
	env := v.env
	return func() tea.Msg {
		out, err := env.Coordinator.AddTaskComment(env.Ctx, in)
		return commentMutatedMsg{outcome: out, err: err}
	}
}

func (v *TaskBoardView) startNewTask() {
	v.mode = modeEditing
	v.flash = flash{}
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editAssignee.Reset()
	v.editPriority = 1 // MEDIUM
	v.editFocusIdx = 0
	v.updateEditFocus()
}

func (v *TaskBoardView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editAssignee.Blur()
	switch v.editFocusIdx {
	case 0:
		v.editTitle.Focus()
	case 1:
		v.editDesc.Focus()
	case 2:
		v.editAssignee.Focus()
	}
}

func (v *TaskBoardView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = modeBoard
		v.flash = flash{}
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + 4) % 5
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % 5
		v.updateEditFocus()
		return v, nil

	case v.editFocusIdx == 3 && key.Matches(msg, v.keys.Left):
		v.editPriority = (v.editPriority + len(models.Priorities) - 1) % len(models.Priorities)
		return v, nil

	case v.editFocusIdx == 3 && key.Matches(msg, v.keys.Right):
		v.editPriority = (v.editPriority + 1) % len(models.Priorities)
		return v, nil

	case v.editFocusIdx == 4 && key.Matches(msg, v.keys.Enter):
		return v, v.saveTask()
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case 0:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case 1:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case 2:
		v.editAssignee, cmd = v.editAssignee.Update(msg)
	}
	return v, cmd
}

// saveTask creates the task in the focused column's status
func (v *TaskBoardView) saveTask() tea.Cmd {
	in := models.CreateTaskInput{
		ProjectID:      v.project.ID,
		OrganizationID: v.project.OrganizationID,
		Title:          v.editTitle.Value(),
		Description:    strings.TrimSpace(v.editDesc.Value()),
		Status:         v.columns[v.col].Status,
		Priority:       models.Priorities[v.editPriority],
		AssigneeEmail:  strings.TrimSpace(v.editAssignee.Value()),
	}
	env := v.env
	return func() tea.Msg {
		out, err := env.Coordinator.CreateTask(env.Ctx, in)
		return taskMutatedMsg{outcome: out, err: err}
	}
}

func (v *TaskBoardView) View() string {
	switch v.mode {
	case modeHelp:
		return v.renderHelpPopup()
	case modeConfirmDelete:
		return v.renderDeleteConfirm()
	case modeEditing:
		return v.renderEditForm()
	case modeDetail, modeComment:
		return v.renderDetail()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n")
	if !v.loaded {
		b.WriteString(v.styles.TitleMuted.Render("Loading tasks..."))
	} else {
		b.WriteString(v.renderBoard())
	}
	b.WriteString("\n")
	b.WriteString(v.flash.render(v.styles))
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *TaskBoardView) renderHeader() string {
	s := v.styles
	chip := func(label, value string) string {
		if value == "" || value == taskfilter.All {
			return s.Chip.Render(label + ": all")
		}
		return s.ChipOn.Render(label + ": " + value)
	}

	filters := lipgloss.JoinHorizontal(lipgloss.Top,
		chip("status", v.spec.Status),
		chip("priority", v.spec.Priority),
		chip("assignee", v.spec.AssigneeEmail),
	)
	if v.mode == modeAssignee {
		filters = lipgloss.JoinHorizontal(lipgloss.Center, filters, s.InputFocused.Width(30).Render(v.assignee.View()))
	}

	title := s.Title.Render(v.project.Name)
	if v.project.OrganizationName != "" {
		title = s.Breadcrumb.Render(v.project.OrganizationName+" / ") + title
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, s.FilterBar.Render(filters))
}

func (v *TaskBoardView) renderBoard() string {
	s := v.styles
	width := max(v.width/len(v.columns)-2, 16)
	visible := max((v.height-10)/2, 1)

	rendered := make([]string, len(v.columns))
	for ci, column := range v.columns {
		header := lipgloss.NewStyle().Foreground(styles.StatusColor(column.Status)).Bold(true).
			Render(fmt.Sprintf("%s (%d)", column.Label, len(column.Tasks)))

		lines := []string{header, ""}
		if len(column.Tasks) == 0 {
			lines = append(lines, s.TitleMuted.Render("No tasks"))
		}
		start := 0
		if ci == v.col && v.row >= visible {
			start = v.row - visible + 1
		}
		for ri := start; ri < len(column.Tasks) && ri < start+visible; ri++ {
			lines = append(lines, v.renderCard(column.Tasks[ri], width-2, ci == v.col && ri == v.row))
		}

		style := s.Column
		if ci == v.col {
			style = s.ColumnFocused
		}
		rendered[ci] = style.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (v *TaskBoardView) renderCard(t models.Task, width int, selected bool) string {
	s := v.styles
	style := s.Card
	if selected {
		style = s.CardSelected
	}

	meta := lipgloss.NewStyle().Foreground(styles.PriorityColor(t.Priority)).Render(string(t.Priority))
	if t.AssigneeEmail != "" {
		meta += s.TitleMuted.Render(" · " + t.AssigneeEmail)
	}
	if t.CommentCount > 0 {
		meta += s.TitleMuted.Render(fmt.Sprintf(" · %d comments", t.CommentCount))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		style.Width(width).Render(t.Title),
		lipgloss.NewStyle().Width(width).Render(meta),
	)
}

func (v *TaskBoardView) renderDetail() string {
	s := v.styles
	t, ok := v.detailTask()
	if !ok {
		return s.TitleMuted.Render("Task no longer exists. Press esc.")
	}

	lines := []string{
		s.Title.Render(t.Title),
		s.Breadcrumb.Render(v.project.Name),
		"",
		fmt.Sprintf("Status:   %s", lipgloss.NewStyle().Foreground(styles.StatusColor(t.Status)).Render(t.Status.Label())),
		fmt.Sprintf("Priority: %s", lipgloss.NewStyle().Foreground(styles.PriorityColor(t.Priority)).Render(string(t.Priority))),
	}
	if t.AssigneeEmail != "" {
		lines = append(lines, "Assignee: "+t.AssigneeEmail)
	}
	if t.DueDate != nil {
		lines = append(lines, "Due:      "+t.DueDate.Format("Jan 2, 2006"))
	}
	if t.Description != "" {
		lines = append(lines, "", t.Description)
	}

	lines = append(lines, "", s.Title.Render(fmt.Sprintf("Comments (%d)", len(v.comments))))
	if len(v.comments) == 0 {
		lines = append(lines, s.TitleMuted.Render("No comments yet"))
	}
	for _, c := range v.comments {
		lines = append(lines,
			s.HelpKey.Render(c.AuthorEmail)+s.TitleMuted.Render(" · "+c.CreatedAt.Local().Format("Jan 2, 2006 15:04")),
			c.Content,
			"",
		)
	}

	inputStyle := s.Input
	if v.mode == modeComment {
		inputStyle = s.InputFocused
	}
	lines = append(lines,
		inputStyle.Render(v.commentInput.View()),
		v.flash.render(s),
		s.TitleMuted.Render("c: comment • Ctrl+S: post • space: move • Esc: back"),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return styles.CenterView(s.Panel.Render(content), v.width, v.height)
}

func (v *TaskBoardView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	field := func(idx int) lipgloss.Style {
		if v.editFocusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := s.Button
	if v.editFocusIdx == 4 {
		btnStyle = s.ButtonFocused
	}

	priority := models.Priorities[v.editPriority]
	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Task"),
		s.Breadcrumb.Render(fmt.Sprintf("%s · %s", v.project.Name, v.columns[v.col].Label)),
		"",
		"Title:",
		field(0).Width(inputWidth).Render(v.editTitle.View()),
		"Description:",
		field(1).Width(inputWidth).Render(v.editDesc.View()),
		"Assignee:",
		field(2).Width(inputWidth).Render(v.editAssignee.View()),
		"Priority:",
		field(3).Width(inputWidth).Render("◀ "+lipgloss.NewStyle().Foreground(styles.PriorityColor(priority)).Render(string(priority))+" ▶"),
		"",
		btnStyle.Render(" Create "),
		"",
		v.flash.render(s),
		s.TitleMuted.Render("Tab: next • ←/→: priority • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskBoardView) renderHelp() string {
	s := v.styles
	if v.width > 0 && v.width < 60 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	return s.Help.Render(fmt.Sprintf("%s move • %s new • %s open • %s/%s/%s filter • %s back",
		s.HelpKey.Render("space"),
		s.HelpKey.Render("n"),
		s.HelpKey.Render("↵"),
		s.HelpKey.Render("s"),
		s.HelpKey.Render("p"),
		s.HelpKey.Render("a"),
		s.HelpKey.Render("esc"),
	))
}

func (v *TaskBoardView) renderHelpPopup() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Keyboard Shortcuts"),
		"",
		s.HelpKey.Render("←/→")+"    switch column",
		s.HelpKey.Render("↑/↓")+"    select task",
		s.HelpKey.Render("space")+"  move to next status",
		s.HelpKey.Render("↵")+"      open task",
		s.HelpKey.Render("n")+"      new task in column",
		s.HelpKey.Render("d")+"      delete task",
		s.HelpKey.Render("s")+"      cycle status filter",
		s.HelpKey.Render("p")+"      cycle priority filter",
		s.HelpKey.Render("a")+"      filter by assignee",
		s.HelpKey.Render("x")+"      clear filters",
		s.HelpKey.Render("r")+"      refresh",
		s.HelpKey.Render("esc")+"    back to projects",
		"",
		s.TitleMuted.Render("Press any key to close"),
	)
	return styles.CenterView(s.Panel.Render(content), v.width, v.height)
}

func (v *TaskBoardView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q and its comments will be removed.", v.deleteTarget.Title)),
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
