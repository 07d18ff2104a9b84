// Package storetest provides in-memory store implementations for tests.
package storetest

import (
	"sort"
	"strings"
	"sync"

	"github.com/quarry-dev/quarry/internal/models"
	"github.com/quarry-dev/quarry/internal/store"
)

// DB is a shared in-memory backing for the three store interfaces. It mimics
// the contract of the gorm stores: scoped project lookups return ErrNotFound
// for missing and unauthorized alike, reads come back with referenced users
// populated, and the (project, user) membership pair is unique.
type DB struct {
	mu       sync.Mutex
	users    map[uint]models.User
	projects map[uint]models.Project
	tickets  map[uint]models.Ticket
	nextID   uint
}

func NewDB() *DB {
	return &DB{
		users:    make(map[uint]models.User),
		projects: make(map[uint]models.Project),
		tickets:  make(map[uint]models.Ticket),
	}
}

func (d *DB) Users() store.UserStore       { return &userStore{db: d} }
func (d *DB) Projects() store.ProjectStore { return &projectStore{db: d} }
func (d *DB) Tickets() store.TicketStore   { return &ticketStore{db: d} }

func (d *DB) allocID() uint {
	d.nextID++
	return d.nextID
}

type userStore struct {
	db *DB
}

func (s *userStore) Create(user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.users {
		if existing.Email == user.Email {
			return store.ErrDuplicate
		}
	}

	user.ID = s.db.allocID()
	s.db.users[user.ID] = *user
	return nil
}

func (s *userStore) FindByID(id uint) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func (s *userStore) FindByEmail(email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, user := range s.db.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

type projectStore struct {
	db *DB
}

func (s *projectStore) Create(project *models.Project) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	project.ID = s.db.allocID()
	for i := range project.TeamMembers {
		project.TeamMembers[i].ID = s.db.allocID()
		project.TeamMembers[i].ProjectID = project.ID
	}

	s.db.projects[project.ID] = cloneProject(*project)
	return nil
}

func (s *projectStore) ListForUser(userID uint) ([]models.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var projects []models.Project

	for _, project := range s.db.projects {
		for _, member := range project.TeamMembers {
			if member.UserID == userID {
				projects = append(projects, s.db.populateProject(project))
				break
			}
		}
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func (s *projectStore) FindForMember(projectID, userID uint) (*models.Project, error) {
	return s.findScoped(projectID, userID, false)
}

func (s *projectStore) FindForOwner(projectID, userID uint) (*models.Project, error) {
	return s.findScoped(projectID, userID, true)
}

func (s *projectStore) findScoped(projectID, userID uint, ownerOnly bool) (*models.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	project, ok := s.db.projects[projectID]
	if !ok {
		return nil, store.ErrNotFound
	}

	for _, member := range project.TeamMembers {
		if member.UserID == userID && (!ownerOnly || member.Role == models.RoleOwner) {
			populated := s.db.populateProject(project)
			return &populated, nil
		}
	}

	return nil, store.ErrNotFound
}

func (s *projectStore) Save(project *models.Project) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stored, ok := s.db.projects[project.ID]
	if !ok {
		return store.ErrNotFound
	}

	stored.Title = project.Title
	stored.Description = project.Description
	s.db.projects[project.ID] = stored
	return nil
}

func (s *projectStore) Delete(project *models.Project) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	delete(s.db.projects, project.ID)
	return nil
}

func (s *projectStore) AddMember(member *models.TeamMember) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	project, ok := s.db.projects[member.ProjectID]
	if !ok {
		return store.ErrNotFound
	}

	for _, existing := range project.TeamMembers {
		if existing.UserID == member.UserID {
			return store.ErrDuplicate
		}
	}

	member.ID = s.db.allocID()
	project.TeamMembers = append(project.TeamMembers, *member)
	s.db.projects[project.ID] = project
	return nil
}

func (s *projectStore) RemoveMember(projectID, userID uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	project, ok := s.db.projects[projectID]
	if !ok {
		return store.ErrNotFound
	}

	for i, member := range project.TeamMembers {
		if member.UserID == userID {
			project.TeamMembers = append(project.TeamMembers[:i], project.TeamMembers[i+1:]...)
			s.db.projects[projectID] = project
			return nil
		}
	}

	return store.ErrNotFound
}

type ticketStore struct {
	db *DB
}

func (s *ticketStore) Create(ticket *models.Ticket) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	ticket.ID = s.db.allocID()
	s.db.tickets[ticket.ID] = *ticket
	return nil
}

func (s *ticketStore) FindByID(id uint) (*models.Ticket, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	ticket, ok := s.db.tickets[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	populated := s.db.populateTicket(ticket)
	return &populated, nil
}

func (s *ticketStore) List(filter store.TicketFilter) ([]models.Ticket, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var tickets []models.Ticket

	for _, ticket := range s.db.tickets {
		if !matches(ticket, filter) {
			continue
		}
		tickets = append(tickets, s.db.populateTicket(ticket))
	}

	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	return tickets, nil
}

func (s *ticketStore) Save(ticket *models.Ticket) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.tickets[ticket.ID]; !ok {
		return store.ErrNotFound
	}

	stored := *ticket
	stored.Assignee = nil
	stored.CreatedBy = models.User{}
	s.db.tickets[ticket.ID] = stored
	return nil
}

func (s *ticketStore) Delete(ticket *models.Ticket) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	delete(s.db.tickets, ticket.ID)
	return nil
}

func matches(ticket models.Ticket, filter store.TicketFilter) bool {
	if ticket.ProjectID != filter.ProjectID {
		return false
	}
	if filter.Status != "" && ticket.Status != filter.Status {
		return false
	}
	if filter.Priority != "" && ticket.Priority != filter.Priority {
		return false
	}
	if filter.AssigneeID != nil {
		if ticket.AssigneeID == nil || *ticket.AssigneeID != *filter.AssigneeID {
			return false
		}
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		title := strings.ToLower(ticket.Title)
		description := strings.ToLower(ticket.Description)
		if !strings.Contains(title, search) && !strings.Contains(description, search) {
			return false
		}
	}
	return true
}

func (d *DB) populateProject(project models.Project) models.Project {
	populated := cloneProject(project)
	for i := range populated.TeamMembers {
		populated.TeamMembers[i].User = d.users[populated.TeamMembers[i].UserID]
	}
	return populated
}

func (d *DB) populateTicket(ticket models.Ticket) models.Ticket {
	ticket.CreatedBy = d.users[ticket.CreatedByID]
	if ticket.AssigneeID != nil {
		assignee := d.users[*ticket.AssigneeID]
		ticket.Assignee = &assignee
	}
	return ticket
}

func cloneProject(project models.Project) models.Project {
	members := make([]models.TeamMember, len(project.TeamMembers))
	copy(members, project.TeamMembers)
	project.TeamMembers = members
	return project
}
