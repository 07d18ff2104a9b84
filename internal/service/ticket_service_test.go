package service_test

import (
	"testing"

	"github.com/quarry-dev/quarry/internal/models"
	"github.com/quarry-dev/quarry/internal/service"
	"github.com/quarry-dev/quarry/internal/store"
	"github.com/quarry-dev/quarry/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTicketService(t *testing.T) (*service.TicketService, *storetest.DB) {
	t.Helper()
	db := storetest.NewDB()
	return service.NewTicketService(db.Tickets()), db
}

func TestCreateAndGetTicket(t *testing.T) {
	svc, db := newTicketService(t)
	creator := createUser(t, db, "Uma", "uma@example.com")

	created, err := svc.Create(creator.ID, service.CreateTicketInput{
		Title:       "Crash on save",
		Description: "Editor crashes when saving",
		Status:      models.TicketStatusOpen,
		Priority:    models.TicketPriorityHigh,
		ProjectID:   42,
	})
	require.NoError(t, err)

	got, err := svc.Get(created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Crash on save", got.Title)
	assert.Equal(t, models.TicketStatusOpen, got.Status)
	assert.Equal(t, models.TicketPriorityHigh, got.Priority)
	assert.Nil(t, got.Assignee)

	// The creator reference resolves to a name/email projection.
	assert.Equal(t, creator.ID, got.CreatedBy.ID)
	assert.Equal(t, "Uma", got.CreatedBy.Name)
	assert.Equal(t, "uma@example.com", got.CreatedBy.Email)
}

func TestUpdateTicket_PatchOnlyGivenFields(t *testing.T) {
	svc, db := newTicketService(t)
	creator := createUser(t, db, "Uma", "uma@example.com")

	created, err := svc.Create(creator.ID, service.CreateTicketInput{
		Title:       "Crash on save",
		Description: "Editor crashes when saving",
		Status:      models.TicketStatusOpen,
		Priority:    models.TicketPriorityHigh,
		ProjectID:   42,
	})
	require.NoError(t, err)

	status := models.TicketStatusClosed
	updated, err := svc.Update(created.ID, service.TicketPatch{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, models.TicketStatusClosed, updated.Status)
	assert.Equal(t, "Crash on save", updated.Title)
	assert.Equal(t, "Editor crashes when saving", updated.Description)
	assert.Equal(t, models.TicketPriorityHigh, updated.Priority)
	assert.Equal(t, creator.ID, updated.CreatedByID)
}

func TestCreateTicket_Validation(t *testing.T) {
	svc, db := newTicketService(t)
	creator := createUser(t, db, "Uma", "uma@example.com")

	valid := service.CreateTicketInput{
		Title:       "t",
		Description: "d",
		Status:      models.TicketStatusOpen,
		Priority:    models.TicketPriorityLow,
		ProjectID:   1,
	}

	tests := []struct {
		name   string
		mutate func(*service.CreateTicketInput)
	}{
		{"missing title", func(in *service.CreateTicketInput) { in.Title = "" }},
		{"missing description", func(in *service.CreateTicketInput) { in.Description = "" }},
		{"missing status", func(in *service.CreateTicketInput) { in.Status = "" }},
		{"invalid status", func(in *service.CreateTicketInput) { in.Status = "done" }},
		{"missing priority", func(in *service.CreateTicketInput) { in.Priority = "" }},
		{"invalid priority", func(in *service.CreateTicketInput) { in.Priority = "urgent" }},
		{"missing project", func(in *service.CreateTicketInput) { in.ProjectID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			_, err := svc.Create(creator.ID, input)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestCreateTicket_UncheckedProjectReference(t *testing.T) {
	svc, db := newTicketService(t)
	creator := createUser(t, db, "Uma", "uma@example.com")

	// Ticket creation does not verify the project exists or that the
	// creator is a member of it.
	created, err := svc.Create(creator.ID, service.CreateTicketInput{
		Title:       "Orphan",
		Description: "References a project nobody made",
		Status:      models.TicketStatusOpen,
		Priority:    models.TicketPriorityLow,
		ProjectID:   777,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(777), created.ProjectID)
}

func TestListTickets_RequiresProject(t *testing.T) {
	svc, _ := newTicketService(t)

	_, err := svc.List(store.TicketFilter{})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestListTickets_Search(t *testing.T) {
	svc, db := newTicketService(t)
	creator := createUser(t, db, "Uma", "uma@example.com")

	seed := []service.CreateTicketInput{
		{Title: "Login page broken", Description: "500 on submit", Status: models.TicketStatusOpen, Priority: models.TicketPriorityHigh, ProjectID: 1},
		{Title: "Slow dashboard", Description: "LOGIN timeout after idle", Status: models.TicketStatusOpen, Priority: models.TicketPriorityLow, ProjectID: 1},
		{Title: "Typo in footer", Description: "copyright year", Status: models.TicketStatusOpen, Priority: models.TicketPriorityLow, ProjectID: 1},
		{Title: "Login flaky", Description: "other project", Status: models.TicketStatusOpen, Priority: models.TicketPriorityHigh, ProjectID: 2},
	}

	for _, input := range seed {
		_, err := svc.Create(creator.ID, input)
		require.NoError(t, err)
	}

	tickets, err := svc.List(store.TicketFilter{ProjectID: 1, Search: "login"})
	require.NoError(t, err)

	require.Len(t, tickets, 2)
	assert.Equal(t, "Login page broken", tickets[0].Title)
	assert.Equal(t, "Slow dashboard", tickets[1].Title)
}

func TestListTickets_ConjunctiveFilters(t *testing.T) {
	svc, db := newTicketService(t)
	creator := createUser(t, db, "Uma", "uma@example.com")
	assignee := createUser(t, db, "Avery", "avery@example.com")

	_, err := svc.Create(creator.ID, service.CreateTicketInput{
		Title: "A", Description: "d", Status: models.TicketStatusOpen,
		Priority: models.TicketPriorityHigh, ProjectID: 1, AssigneeID: &assignee.ID,
	})
	require.NoError(t, err)

	_, err = svc.Create(creator.ID, service.CreateTicketInput{
		Title: "B", Description: "d", Status: models.TicketStatusClosed,
		Priority: models.TicketPriorityHigh, ProjectID: 1, AssigneeID: &assignee.ID,
	})
	require.NoError(t, err)

	_, err = svc.Create(creator.ID, service.CreateTicketInput{
		Title: "C", Description: "d", Status: models.TicketStatusOpen,
		Priority: models.TicketPriorityHigh, ProjectID: 1,
	})
	require.NoError(t, err)

	tickets, err := svc.List(store.TicketFilter{
		ProjectID:  1,
		Status:     models.TicketStatusOpen,
		Priority:   models.TicketPriorityHigh,
		AssigneeID: &assignee.ID,
	})
	require.NoError(t, err)

	require.Len(t, tickets, 1)
	assert.Equal(t, "A", tickets[0].Title)
	require.NotNil(t, tickets[0].Assignee)
	assert.Equal(t, "avery@example.com", tickets[0].Assignee.Email)
}

func TestListTickets_InvalidFilterValues(t *testing.T) {
	svc, _ := newTicketService(t)

	_, err := svc.List(store.TicketFilter{ProjectID: 1, Status: "done"})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.List(store.TicketFilter{ProjectID: 1, Priority: "urgent"})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestTicket_NotFound(t *testing.T) {
	svc, _ := newTicketService(t)

	_, err := svc.Get(99)
	assert.ErrorIs(t, err, service.ErrTicketNotFound)

	status := models.TicketStatusClosed
	_, err = svc.Update(99, service.TicketPatch{Status: &status})
	assert.ErrorIs(t, err, service.ErrTicketNotFound)

	err = svc.Delete(99)
	assert.ErrorIs(t, err, service.ErrTicketNotFound)
}

func TestDeleteTicket(t *testing.T) {
	svc, db := newTicketService(t)
	creator := createUser(t, db, "Uma", "uma@example.com")

	created, err := svc.Create(creator.ID, service.CreateTicketInput{
		Title:       "t",
		Description: "d",
		Status:      models.TicketStatusOpen,
		Priority:    models.TicketPriorityLow,
		ProjectID:   1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(created.ID))

	_, err = svc.Get(created.ID)
	assert.ErrorIs(t, err, service.ErrTicketNotFound)
}
