package store

import (
	"github.com/quarry-dev/quarry/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type projectStore struct {
	db *gorm.DB
}

func NewProjectStore(db *gorm.DB) ProjectStore {
	return &projectStore{db: db}
}

func (s *projectStore) Create(project *models.Project) error {
	// Creates the membership rows with the project; the referenced users
	// already exist.
	if err := s.db.Omit("TeamMembers.User").Create(project).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *projectStore) ListForUser(userID uint) ([]models.Project, error) {
	var projects []models.Project

	err := s.db.
		Joins("JOIN team_members ON team_members.project_id = projects.id").
		Where("team_members.user_id = ?", userID).
		Preload("TeamMembers.User").
		Find(&projects).Error

	if err != nil {
		return nil, translateError(err)
	}

	return projects, nil
}

func (s *projectStore) FindForMember(projectID, userID uint) (*models.Project, error) {
	return s.findScoped(projectID, userID, false)
}

func (s *projectStore) FindForOwner(projectID, userID uint) (*models.Project, error) {
	return s.findScoped(projectID, userID, true)
}

// findScoped is the single authorization predicate: existence and membership
// (and, for mutations, ownership) are resolved in one conjunctive query so an
// unauthorized project is indistinguishable from a nonexistent one.
func (s *projectStore) findScoped(projectID, userID uint, ownerOnly bool) (*models.Project, error) {
	query := s.db.
		Joins("JOIN team_members ON team_members.project_id = projects.id").
		Where("projects.id = ? AND team_members.user_id = ?", projectID, userID)

	if ownerOnly {
		query = query.Where("team_members.role = ?", models.RoleOwner)
	}

	var project models.Project

	if err := query.Preload("TeamMembers.User").First(&project).Error; err != nil {
		return nil, translateError(err)
	}

	return &project, nil
}

func (s *projectStore) Save(project *models.Project) error {
	err := s.db.Model(project).Updates(map[string]interface{}{
		"title":       project.Title,
		"description": project.Description,
	}).Error

	if err != nil {
		return translateError(err)
	}

	return nil
}

func (s *projectStore) Delete(project *models.Project) error {
	// The team_members rows go with the project; tickets referencing it are
	// left in place.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})

	if err != nil {
		return translateError(err)
	}

	return nil
}

func (s *projectStore) AddMember(member *models.TeamMember) error {
	// The composite unique index on (project_id, user_id) backstops the
	// membership check against concurrent adds of the same user.
	if err := s.db.Omit(clause.Associations).Create(member).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *projectStore) RemoveMember(projectID, userID uint) error {
	result := s.db.
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.TeamMember{})

	if result.Error != nil {
		return translateError(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
