// Package service holds the access-control core: ProjectService owns the
// membership rules for projects, TicketService scopes tickets to projects.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quarry-dev/quarry/internal/models"
	"github.com/quarry-dev/quarry/internal/store"
	"go.uber.org/zap"
)

const maxProjectTitleLen = 100

// ProjectPatch carries the updatable project fields. Nil means unchanged.
type ProjectPatch struct {
	Title       *string
	Description *string
}

type ProjectService struct {
	projects store.ProjectStore
	users    store.UserStore
}

func NewProjectService(projects store.ProjectStore, users store.UserStore) *ProjectService {
	return &ProjectService{projects: projects, users: users}
}

// Create makes the subject the sole owner of the new project. This is the
// only path by which a project acquires an owner.
func (s *ProjectService) Create(subjectID uint, title, description string) (*models.Project, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if title == "" || description == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrValidation)
	}

	if len(title) > maxProjectTitleLen {
		return nil, fmt.Errorf("%w: title cannot be more than %d characters", ErrValidation, maxProjectTitleLen)
	}

	project := &models.Project{
		Title:       title,
		Description: description,
		TeamMembers: []models.TeamMember{
			{UserID: subjectID, Role: models.RoleOwner},
		},
	}

	if err := s.projects.Create(project); err != nil {
		zap.L().Error("failed to create project", zap.Error(err))
		return nil, err
	}

	return s.projects.FindForMember(project.ID, subjectID)
}

// List returns every project the subject appears in, any role.
func (s *ProjectService) List(subjectID uint) ([]models.Project, error) {
	return s.projects.ListForUser(subjectID)
}

func (s *ProjectService) Get(subjectID, projectID uint) (*models.Project, error) {
	project, err := s.projects.FindForMember(projectID, subjectID)

	if err != nil {
		return nil, s.mapProjectErr(err)
	}

	return project, nil
}

func (s *ProjectService) Update(subjectID, projectID uint, patch ProjectPatch) (*models.Project, error) {
	project, err := s.projects.FindForOwner(projectID, subjectID)

	if err != nil {
		return nil, s.mapProjectErr(err)
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		if len(title) > maxProjectTitleLen {
			return nil, fmt.Errorf("%w: title cannot be more than %d characters", ErrValidation, maxProjectTitleLen)
		}
		project.Title = title
	}

	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: description cannot be empty", ErrValidation)
		}
		project.Description = description
	}

	if err := s.projects.Save(project); err != nil {
		zap.L().Error("failed to update project", zap.Uint("project_id", projectID), zap.Error(err))
		return nil, err
	}

	return project, nil
}

func (s *ProjectService) Delete(subjectID, projectID uint) error {
	project, err := s.projects.FindForOwner(projectID, subjectID)

	if err != nil {
		return s.mapProjectErr(err)
	}

	if err := s.projects.Delete(project); err != nil {
		zap.L().Error("failed to delete project", zap.Uint("project_id", projectID), zap.Error(err))
		return err
	}

	return nil
}

// AddTeamMember appends the user with the given email as a plain member.
// New members are always non-owners; there is no escalation path.
func (s *ProjectService) AddTeamMember(subjectID, projectID uint, email string) (*models.Project, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	project, err := s.projects.FindForOwner(projectID, subjectID)

	if err != nil {
		return nil, s.mapProjectErr(err)
	}

	user, err := s.users.FindByEmail(email)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	for _, member := range project.TeamMembers {
		if member.UserID == user.ID {
			return nil, ErrAlreadyMember
		}
	}

	err = s.projects.AddMember(&models.TeamMember{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      models.RoleMember,
	})

	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyMember
		}
		zap.L().Error("failed to add team member",
			zap.Uint("project_id", projectID),
			zap.Uint("user_id", user.ID),
			zap.Error(err))
		return nil, err
	}

	return s.projects.FindForMember(project.ID, subjectID)
}

// RemoveTeamMember removes a non-owner member. The owner can never be removed
// through this operation, by anyone, so a project always keeps exactly one
// owner.
func (s *ProjectService) RemoveTeamMember(subjectID, projectID, userID uint) (*models.Project, error) {
	project, err := s.projects.FindForOwner(projectID, subjectID)

	if err != nil {
		return nil, s.mapProjectErr(err)
	}

	var target *models.TeamMember

	for i := range project.TeamMembers {
		if project.TeamMembers[i].UserID == userID {
			target = &project.TeamMembers[i]
			break
		}
	}

	if target == nil {
		return nil, ErrMemberNotFound
	}

	if target.Role == models.RoleOwner {
		return nil, ErrOwnerRemoval
	}

	if err := s.projects.RemoveMember(project.ID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		zap.L().Error("failed to remove team member",
			zap.Uint("project_id", projectID),
			zap.Uint("user_id", userID),
			zap.Error(err))
		return nil, err
	}

	return s.projects.FindForMember(project.ID, subjectID)
}

func (s *ProjectService) mapProjectErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrProjectNotFound
	}
	return err
}
