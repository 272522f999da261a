package graphql

// operation is one named GraphQL document and the top-level field it reads
type operation struct {
	Name     string
	Field    string
	Document string
}

const (
	organizationFields = `
		id
		name
		slug
		contactEmail
		projectCount
		activeProjectCount
		createdAt`

	commentFields = `
		id
		content
		authorEmail
		createdAt`

	taskFields = `
		id
		title
		description
		status
		priority
		assigneeEmail
		dueDate
		commentCount
		createdAt`

	taskProjectFields = `
		project {
			id
			name
			organization {
				id
				name
			}
		}`

	projectFields = `
		id
		name
		description
		status
		dueDate
		taskCount
		completedTasks
		inProgressTasks
		todoTasks
		completionRate
		createdAt
		organization {
			id
			name
		}`
)

var (
	opOrganizations = operation{
		Name:  "GetOrganizations",
		Field: "organizations",
		Document: `query GetOrganizations {
	organizations {` + organizationFields + `
	}
}`,
	}

	opOrganization = operation{
		Name:  "GetOrganization",
		Field: "organization",
		Document: `query GetOrganization($id: Int!) {
	organization(id: $id) {` + organizationFields + `
	}
}`,
	}

	opOrganizationStats = operation{
		Name:  "GetOrganizationStats",
		Field: "organizationStats",
		Document: `query GetOrganizationStats($organizationId: Int!) {
	organizationStats(organizationId: $organizationId) {
		totalProjects
		activeProjects
		completedProjects
		totalTasks
		completedTasks
	}
}`,
	}

	opProjects = operation{
		Name:  "GetProjects",
		Field: "projects",
		Document: `query GetProjects($organizationId: Int, $status: String) {
	projects(organizationId: $organizationId, status: $status) {` + projectFields + `
	}
}`,
	}

	opProject = operation{
		Name:  "GetProject",
		Field: "project",
		Document: `query GetProject($id: Int!) {
	project(id: $id) {` + projectFields + `
		tasks {` + taskFields + `
			comments {` + commentFields + `
			}
		}
	}
}`,
	}

	opProjectStats = operation{
		Name:  "GetProjectStats",
		Field: "projectStats",
		Document: `query GetProjectStats($projectId: Int!) {
	projectStats(projectId: $projectId) {
		projectId
		totalTasks
		todoTasks
		inProgressTasks
		completedTasks
		completionRate
	}
}`,
	}

	opTasks = operation{
		Name:  "GetTasks",
		Field: "tasks",
		Document: `query GetTasks($projectId: Int, $organizationId: Int, $status: String, $assigneeEmail: String) {
	tasks(projectId: $projectId, organizationId: $organizationId, status: $status, assigneeEmail: $assigneeEmail) {` + taskFields + taskProjectFields + `
	}
}`,
	}

	opTask = operation{
		Name:  "GetTask",
		Field: "task",
		Document: `query GetTask($id: Int!) {
	task(id: $id) {` + taskFields + taskProjectFields + `
		comments {` + commentFields + `
		}
	}
}`,
	}

	opTaskComments = operation{
		Name:  "GetTaskComments",
		Field: "taskComments",
		Document: `query GetTaskComments($taskId: Int!) {
	taskComments(taskId: $taskId) {` + commentFields + `
		task {
			id
		}
	}
}`,
	}
)

var (
	opCreateOrganization = operation{
		Name:  "CreateOrganization",
		Field: "createOrganization",
		Document: `mutation CreateOrganization($name: String!, $contactEmail: String!, $slug: String) {
	createOrganization(name: $name, contactEmail: $contactEmail, slug: $slug) {
		success
		message
		organization {` + organizationFields + `
		}
	}
}`,
	}

	opUpdateOrganization = operation{
		Name:  "UpdateOrganization",
		Field: "updateOrganization",
		Document: `mutation UpdateOrganization($id: Int!, $name: String, $contactEmail: String, $slug: String) {
	updateOrganization(id: $id, name: $name, contactEmail: $contactEmail, slug: $slug) {
		success
		message
		organization {` + organizationFields + `
		}
	}
}`,
	}

	opCreateProject = operation{
		Name:  "CreateProject",
		Field: "createProject",
		Document: `mutation CreateProject($organizationId: Int!, $name: String!, $description: String, $status: String, $dueDate: Date) {
	createProject(organizationId: $organizationId, name: $name, description: $description, status: $status, dueDate: $dueDate) {
		success
		message
		project {` + projectFields + `
		}
	}
}`,
	}

	opUpdateProject = operation{
		Name:  "UpdateProject",
		Field: "updateProject",
		Document: `mutation UpdateProject($id: Int!, $organizationId: Int, $name: String, $description: String, $status: String, $dueDate: Date) {
	updateProject(id: $id, organizationId: $organizationId, name: $name, description: $description, status: $status, dueDate: $dueDate) {
		success
		message
		project {` + projectFields + `
		}
	}
}`,
	}

	opDeleteProject = operation{
		Name:  "DeleteProject",
		Field: "deleteProject",
		Document: `mutation DeleteProject($id: Int!, $organizationId: Int) {
	deleteProject(id: $id, organizationId: $organizationId) {
		success
		message
	}
}`,
	}

	opCreateTask = operation{
		Name:  "CreateTask",
		Field: "createTask",
		Document: `mutation CreateTask($projectId: Int!, $title: String!, $description: String, $status: String, $priority: String, $assigneeEmail: String, $dueDate: DateTime, $organizationId: Int) {
	createTask(projectId: $projectId, title: $title, description: $description, status: $status, priority: $priority, assigneeEmail: $assigneeEmail, dueDate: $dueDate, organizationId: $organizationId) {
		success
		message
		task {` + taskFields + taskProjectFields + `
		}
	}
}`,
	}

	opUpdateTask = operation{
		Name:  "UpdateTask",
		Field: "updateTask",
		Document: `mutation UpdateTask($id: Int!, $title: String, $description: String, $status: String, $priority: String, $assigneeEmail: String, $dueDate: DateTime, $organizationId: Int, $validateTransition: Boolean) {
	updateTask(id: $id, title: $title, description: $description, status: $status, priority: $priority, assigneeEmail: $assigneeEmail, dueDate: $dueDate, organizationId: $organizationId, validateTransition: $validateTransition) {
		success
		message
		task {` + taskFields + taskProjectFields + `
		}
	}
}`,
	}

	opDeleteTask = operation{
		Name:  "DeleteTask",
		Field: "deleteTask",
		Document: `mutation DeleteTask($id: Int!, $organizationId: Int) {
	deleteTask(id: $id, organizationId: $organizationId) {
		success
		message
	}
}`,
	}

	opAddTaskComment = operation{
		Name:  "AddTaskComment",
		Field: "addTaskComment",
		Document: `mutation AddTaskComment($taskId: Int!, $content: String!, $authorEmail: String!, $organizationId: Int) {
	addTaskComment(taskId: $taskId, content: $content, authorEmail: $authorEmail, organizationId: $organizationId) {
		success
		message
		comment {` + commentFields + `
			task {
				id
			}
		}
	}
}`,
	}

	opUpdateTaskComment = operation{
		Name:  "UpdateTaskComment",
		Field: "updateTaskComment",
		Document: `mutation UpdateTaskComment($id: Int!, $content: String!) {
	updateTaskComment(id: $id, content: $content) {
		success
		message
		comment {` + commentFields + `
			task {
				id
			}
		}
	}
}`,
	}

	opDeleteTaskComment = operation{
		Name:  "DeleteTaskComment",
		Field: "deleteTaskComment",
		Document: `mutation DeleteTaskComment($id: Int!) {
	deleteTaskComment(id: $id) {
		success
		message
	}
}`,
	}
)
