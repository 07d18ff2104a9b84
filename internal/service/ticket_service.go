package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quarry-dev/quarry/internal/models"
	"github.com/quarry-dev/quarry/internal/store"
	"go.uber.org/zap"
)

// CreateTicketInput carries the fields for a new ticket. The subject becomes
// the creator; the creator is never mutated afterwards.
type CreateTicketInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	AssigneeID  *uint
	ProjectID   uint
}

// TicketPatch carries the updatable ticket fields. Nil means unchanged.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssigneeID  *uint
}

// TicketService scopes tickets to a project. Ticket operations are not gated
// on project membership, and the project reference is not verified to exist;
// that matches the upstream contract and is recorded as a known gap rather
// than silently hardened.
type TicketService struct {
	tickets store.TicketStore
}

func NewTicketService(tickets store.TicketStore) *TicketService {
	return &TicketService{tickets: tickets}
}

func (s *TicketService) Create(subjectID uint, input CreateTicketInput) (*models.Ticket, error) {
	if err := validateTicketFields(input.Title, input.Description, input.Status, input.Priority); err != nil {
		return nil, err
	}

	if input.ProjectID == 0 {
		return nil, fmt.Errorf("%w: project id is required", ErrValidation)
	}

	ticket := &models.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      input.Status,
		Priority:    input.Priority,
		AssigneeID:  input.AssigneeID,
		ProjectID:   input.ProjectID,
		CreatedByID: subjectID,
	}

	if err := s.tickets.Create(ticket); err != nil {
		zap.L().Error("failed to create ticket", zap.Error(err))
		return nil, err
	}

	return s.tickets.FindByID(ticket.ID)
}

func (s *TicketService) List(filter store.TicketFilter) ([]models.Ticket, error) {
	if filter.ProjectID == 0 {
		return nil, fmt.Errorf("%w: project id is required", ErrValidation)
	}

	if filter.Status != "" && !models.ValidTicketStatus(filter.Status) {
		return nil, fmt.Errorf("%w: invalid status", ErrValidation)
	}

	if filter.Priority != "" && !models.ValidTicketPriority(filter.Priority) {
		return nil, fmt.Errorf("%w: invalid priority", ErrValidation)
	}

	return s.tickets.List(filter)
}

func (s *TicketService) Get(ticketID uint) (*models.Ticket, error) {
	ticket, err := s.tickets.FindByID(ticketID)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (s *TicketService) Update(ticketID uint, patch TicketPatch) (*models.Ticket, error) {
	ticket, err := s.tickets.FindByID(ticketID)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		ticket.Title = title
	}

	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: description cannot be empty", ErrValidation)
		}
		ticket.Description = description
	}

	if patch.Status != nil {
		if !models.ValidTicketStatus(*patch.Status) {
			return nil, fmt.Errorf("%w: invalid status", ErrValidation)
		}
		ticket.Status = *patch.Status
	}

	if patch.Priority != nil {
		if !models.ValidTicketPriority(*patch.Priority) {
			return nil, fmt.Errorf("%w: invalid priority", ErrValidation)
		}
		ticket.Priority = *patch.Priority
	}

	if patch.AssigneeID != nil {
		ticket.AssigneeID = patch.AssigneeID
	}

	if err := s.tickets.Save(ticket); err != nil {
		zap.L().Error("failed to update ticket", zap.Uint("ticket_id", ticketID), zap.Error(err))
		return nil, err
	}

	return s.tickets.FindByID(ticket.ID)
}

func (s *TicketService) Delete(ticketID uint) error {
	ticket, err := s.tickets.FindByID(ticketID)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTicketNotFound
		}
		return err
	}

	if err := s.tickets.Delete(ticket); err != nil {
		zap.L().Error("failed to delete ticket", zap.Uint("ticket_id", ticketID), zap.Error(err))
		return err
	}

	return nil
}

func validateTicketFields(title, description, status, priority string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: title and description are required", ErrValidation)
	}

	if !models.ValidTicketStatus(status) {
		return fmt.Errorf("%w: status must be one of open, in-progress, closed", ErrValidation)
	}

	if !models.ValidTicketPriority(priority) {
		return fmt.Errorf("%w: priority must be one of low, medium, high", ErrValidation)
	}

	return nil
}
