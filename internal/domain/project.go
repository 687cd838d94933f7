package domain

import "time"

// ProjectStatus enumerates the calendar project lifecycle states.
type ProjectStatus string

const (
	ProjectStatusNew        ProjectStatus = "new"
	ProjectStatusUploading  ProjectStatus = "uploading"
	ProjectStatusPrompts    ProjectStatus = "prompts"
	ProjectStatusProcessing ProjectStatus = "processing"
	ProjectStatusPartial    ProjectStatus = "partial"
	ProjectStatusPreview    ProjectStatus = "preview"
	ProjectStatusCheckout   ProjectStatus = "checkout"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

// legalTransitions is the authoritative project state machine. The source
// lifecycle allowed unconditional overwrites; here out-of-order moves are
// rejected, with partial/preview permitted to re-enter processing so failed
// months can be retried, and partial promoted to preview once per-month
// retries complete the set.
var legalTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectStatusNew:        {ProjectStatusUploading},
	ProjectStatusUploading:  {ProjectStatusPrompts},
	ProjectStatusPrompts:    {ProjectStatusProcessing},
	ProjectStatusProcessing: {ProjectStatusPartial, ProjectStatusPreview},
	ProjectStatusPartial:    {ProjectStatusProcessing, ProjectStatusPreview},
	ProjectStatusPreview:    {ProjectStatusProcessing, ProjectStatusCheckout},
	ProjectStatusCheckout:   {ProjectStatusCompleted},
}

// CanTransition reports whether moving a project from one status to another
// is legal. Same-status updates are always permitted.
func CanTransition(from, to ProjectStatus) bool {
	if from == to {
		return true
	}
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Project is one user's calendar creation session, keyed by an opaque token.
type Project struct {
	Token          string
	Status         ProjectStatus
	CalendarFormat string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
}

// ReferenceImage is a user-uploaded likeness photo. Identifiers are assigned
// monotonically within a project and are never reused.
type ReferenceImage struct {
	ID         int
	Filename   string
	Data       []byte
	Thumbnail  []byte
	UploadedAt time.Time
}
