package constants

const (
	// Table names
	TableProjects = "projects"
	TableTasks    = "tasks"
	TableComments = "comments"
	TableNotes    = "notes"

	// Marker column shared by the demo tables
	ColumnDeletedAt = "deleted_at"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
