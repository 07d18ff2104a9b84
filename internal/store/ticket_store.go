package store

import (
	"github.com/quarry-dev/quarry/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ticketStore struct {
	db *gorm.DB
}

func NewTicketStore(db *gorm.DB) TicketStore {
	return &ticketStore{db: db}
}

func (s *ticketStore) Create(ticket *models.Ticket) error {
	if err := s.db.Create(ticket).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *ticketStore) FindByID(id uint) (*models.Ticket, error) {
	var ticket models.Ticket

	err := s.db.
		Preload("Assignee").
		Preload("CreatedBy").
		First(&ticket, id).Error

	if err != nil {
		return nil, translateError(err)
	}

	return &ticket, nil
}

func (s *ticketStore) List(filter TicketFilter) ([]models.Ticket, error) {
	query := s.db.Where("project_id = ?", filter.ProjectID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var tickets []models.Ticket

	err := query.
		Preload("Assignee").
		Preload("CreatedBy").
		Find(&tickets).Error

	if err != nil {
		return nil, translateError(err)
	}

	return tickets, nil
}

func (s *ticketStore) Save(ticket *models.Ticket) error {
	if err := s.db.Omit(clause.Associations).Save(ticket).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *ticketStore) Delete(ticket *models.Ticket) error {
	if err := s.db.Delete(ticket).Error; err != nil {
		return translateError(err)
	}
	return nil
}
