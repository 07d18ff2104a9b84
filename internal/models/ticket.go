package models

const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in-progress"
	TicketStatusClosed     = "closed"
)

const (
	TicketPriorityLow    = "low"
	TicketPriorityMedium = "medium"
	TicketPriorityHigh   = "high"
)

// Ticket references its project by id only. Deleting a project does not
// cascade here: orphaned tickets keep their project_id.
type Ticket struct {
	BaseModel

	Title       string `gorm:"not null"`
	Description string `gorm:"not null"`
	Status      string `gorm:"not null"` // "open", "in-progress", "closed"
	Priority    string `gorm:"not null"` // "low", "medium", "high"
	AssigneeID  *uint  `gorm:"index"`
	ProjectID   uint   `gorm:"not null;index"`
	CreatedByID uint   `gorm:"not null;index"`

	// Relationships
	Assignee  *User `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	CreatedBy User  `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func ValidTicketStatus(status string) bool {
	switch status {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

func ValidTicketPriority(priority string) bool {
	switch priority {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}
