package views

// MutationKind names a backend mutation
type MutationKind string

const (
	CreateOrganization MutationKind = "createOrganization"
	UpdateOrganization MutationKind = "updateOrganization"
	CreateProject      MutationKind = "createProject"
	UpdateProject      MutationKind = "updateProject"
	DeleteProject      MutationKind = "deleteProject"
	CreateTask         MutationKind = "createTask"
	UpdateTask         MutationKind = "updateTask"
	DeleteTask         MutationKind = "deleteTask"
	AddTaskComment     MutationKind = "addTaskComment"
	UpdateTaskComment  MutationKind = "updateTaskComment"
	DeleteTaskComment  MutationKind = "deleteTaskComment"
)

// Scope carries the ids a mutation touched. Zero means unknown.
type Scope struct {
	OrganizationID int64
	ProjectID      int64
	TaskID         int64
}

// rule is one view kind invalidated by a mutation. self marks views of the
// mutated entity itself, which do not exist yet for a create.
type rule struct {
	kind Kind
	self bool
}

var orgRules = []rule{
	{kind: KindOrganizations},
}

var projectRules = []rule{
	{kind: KindProjects},
	{kind: KindOrganizationStats},
	{kind: KindProject, self: true},
}

var taskRules = []rule{
	{kind: KindProjectTasks},
	{kind: KindProject},
	{kind: KindProjectStats},
	{kind: KindOrganizationTasks},
	{kind: KindOrganizationStats},
	{kind: KindTask, self: true},
}

// comment counts are embedded in task lists and the project detail
var commentRules = []rule{
	{kind: KindTaskComments},
	{kind: KindTask},
	{kind: KindProjectTasks},
	{kind: KindProject},
}

var invalidationRules = map[MutationKind][]rule{
	CreateOrganization: orgRules,
	UpdateOrganization: orgRules,
	CreateProject:      withoutSelf(projectRules),
	UpdateProject:      projectRules,
	DeleteProject:      projectRules,
	CreateTask:         withoutSelf(taskRules),
	UpdateTask:         taskRules,
	DeleteTask:         taskRules,
	AddTaskComment:     commentRules,
	UpdateTaskComment:  commentRules,
	DeleteTaskComment:  commentRules,
}

func withoutSelf(rules []rule) []rule {
	out := make([]rule, 0, len(rules))
	for _, r := range rules {
		if !r.self {
			out = append(out, r)
		}
	}
	return out
}

// Invalidations returns the views a successful mutation of the given kind
// makes stale. Views whose scope id is unknown are left out.
func Invalidations(kind MutationKind, scope Scope) []Key {
	rules := invalidationRules[kind]
	keys := make([]Key, 0, len(rules))
	for _, r := range rules {
		if id, ok := scope.id(r.kind); ok {
			keys = append(keys, Key{Kind: r.kind, ID: id})
		}
	}
	return keys
}

// Unscoped returns the view kinds Invalidations leaves out for scope
func Unscoped(kind MutationKind, scope Scope) []Kind {
	var out []Kind
	for _, r := range invalidationRules[kind] {
		if _, ok := scope.id(r.kind); !ok {
			out = append(out, r.kind)
		}
	}
	return out
}

// id returns the scope id for views of kind k; false when it is unknown
func (s Scope) id(k Kind) (int64, bool) {
	var id int64
	switch k.Level() {
	case LevelNone:
		return 0, true
	case LevelOrganization:
		id = s.OrganizationID
	case LevelProject:
		id = s.ProjectID
	case LevelTask:
		id = s.TaskID
	}
	return id, id != 0
}
