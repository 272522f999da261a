// Package views tracks the data views fetched from the backend, which of them
// a mutation makes stale, and refreshes them in request order.
package views

import "fmt"

// Kind names a family of views
type Kind string

const (
	KindOrganizations     Kind = "organizations"
	KindOrganizationStats Kind = "organizationStats"
	KindOrganizationTasks Kind = "organizationTasks"
	KindProjects          Kind = "projects"
	KindProject           Kind = "project"
	KindProjectTasks      Kind = "projectTasks"
	KindProjectStats      Kind = "projectStats"
	KindTask              Kind = "task"
	KindTaskComments      Kind = "taskComments"
)

// Level is the entity a view kind is scoped by
type Level int

const (
	LevelNone Level = iota
	LevelOrganization
	LevelProject
	LevelTask
)

var kindLevels = map[Kind]Level{
	KindOrganizations:     LevelNone,
	KindOrganizationStats: LevelOrganization,
	KindOrganizationTasks: LevelOrganization,
	KindProjects:          LevelOrganization,
	KindProject:           LevelProject,
	KindProjectTasks:      LevelProject,
	KindProjectStats:      LevelProject,
	KindTask:              LevelTask,
	KindTaskComments:      LevelTask,
}

// Level returns the scope level of the kind
func (k Kind) Level() Level {
	return kindLevels[k]
}

// Key identifies one view: a kind and the id of the entity it is scoped to
type Key struct {
	Kind Kind
	ID   int64
}

func (k Key) String() string {
	if k.Kind.Level() == LevelNone {
		return string(k.Kind)
	}
	return fmt.Sprintf("%s:%d", k.Kind, k.ID)
}

func Organizations() Key { return Key{Kind: KindOrganizations} }
func OrganizationStats(orgID int64) Key { return Key{Kind: KindOrganizationStats, ID: orgID} }
func OrganizationTasks(orgID int64) Key { return Key{Kind: KindOrganizationTasks, ID: orgID} }
func Projects(orgID int64) Key { return Key{Kind: KindProjects, ID: orgID} }
func Project(projectID int64) Key { return Key{Kind: KindProject, ID: projectID} }
func ProjectTasks(projectID int64) Key { return Key{Kind: KindProjectTasks, ID: projectID} }
func ProjectStats(projectID int64) Key { return Key{Kind: KindProjectStats, ID: projectID} }
func Task(taskID int64) Key { return Key{Kind: KindTask, ID: taskID} }
func TaskComments(taskID int64) Key { return Key{Kind: KindTaskComments, ID: taskID} }
