// Package store wraps persistence for users, projects, and tickets. The
// membership-scoped project lookups live here: a project that does not exist
// and a project the subject may not see are resolved by one conjunctive query
// and surface as the same ErrNotFound.
package store

import (
	"errors"

	"github.com/quarry-dev/quarry/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserStore interface {
	Create(user *models.User) error
	FindByID(id uint) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
}

type ProjectStore interface {
	// Create persists the project together with its initial membership list.
	Create(project *models.Project) error
	// ListForUser returns every project the user appears in, any role.
	ListForUser(userID uint) ([]models.Project, error)
	// FindForMember resolves the project only if the user is on its team.
	FindForMember(projectID, userID uint) (*models.Project, error)
	// FindForOwner resolves the project only if the user holds the owner role.
	FindForOwner(projectID, userID uint) (*models.Project, error)
	Save(project *models.Project) error
	Delete(project *models.Project) error
	AddMember(member *models.TeamMember) error
	RemoveMember(projectID, userID uint) error
}

// TicketFilter narrows a ticket listing. ProjectID is mandatory; the rest are
// optional conjunctive predicates. Search matches title or description,
// case-insensitively.
type TicketFilter struct {
	ProjectID  uint
	Status     string
	Priority   string
	AssigneeID *uint
	Search     string
}

type TicketStore interface {
	Create(ticket *models.Ticket) error
	FindByID(id uint) (*models.Ticket, error)
	List(filter TicketFilter) ([]models.Ticket, error)
	Save(ticket *models.Ticket) error
	Delete(ticket *models.Ticket) error
}
