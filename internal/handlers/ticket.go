package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quarry-dev/quarry/internal/models"
	"github.com/quarry-dev/quarry/internal/service"
	"github.com/quarry-dev/quarry/internal/store"
	"github.com/quarry-dev/quarry/internal/types"
	"github.com/quarry-dev/quarry/internal/utils"
)

type CreateTicketRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Status      string `json:"status" binding:"required"`
	Priority    string `json:"priority" binding:"required"`
	AssigneeID  *uint  `json:"assignee"`
	ProjectID   uint   `json:"project_id" binding:"required"`
}

type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssigneeID  *uint   `json:"assignee"`
}

type TicketResponse struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      string              `json:"status"`
	Priority    string              `json:"priority"`
	Assignee    *types.UserResponse `json:"assignee,omitempty"`
	ProjectID   uint                `json:"project_id"`
	CreatedBy   types.UserResponse  `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type TicketHandler struct {
	tickets *service.TicketService
}

func NewTicketHandler(tickets *service.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

func (h *TicketHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateTicketRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.tickets.Create(userID, service.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
	})

	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	BroadcastTicketRefresh(ticket.ProjectID)
	ctx.JSON(http.StatusCreated, toTicketResponse(ticket))
}

func (h *TicketHandler) List(ctx *gin.Context) {
	projectIDStr := ctx.Query("projectId")

	if projectIDStr == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project ID is required"})
		return
	}

	projectID, err := strconv.ParseUint(projectIDStr, 10, 32)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	filter := store.TicketFilter{
		ProjectID: uint(projectID),
		Status:    ctx.Query("status"),
		Priority:  ctx.Query("priority"),
		Search:    ctx.Query("search"),
	}

	if assigneeStr := ctx.Query("assignee"); assigneeStr != "" {
		assigneeID, err := strconv.ParseUint(assigneeStr, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID"})
			return
		}
		id := uint(assigneeID)
		filter.AssigneeID = &id
	}

	tickets, err := h.tickets.List(filter)

	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	response := make([]TicketResponse, 0, len(tickets))

	for i := range tickets {
		response = append(response, toTicketResponse(&tickets[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *TicketHandler) Get(ctx *gin.Context) {
	ticketID, err := utils.GetTicketID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.tickets.Get(ticketID)

	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toTicketResponse(ticket))
}

func (h *TicketHandler) Update(ctx *gin.Context) {
	ticketID, err := utils.GetTicketID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateTicketRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ticket, err := h.tickets.Update(ticketID, service.TicketPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
	})

	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	BroadcastTicketRefresh(ticket.ProjectID)
	ctx.JSON(http.StatusOK, toTicketResponse(ticket))
}

func (h *TicketHandler) Delete(ctx *gin.Context) {
	ticketID, err := utils.GetTicketID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.tickets.Get(ticketID)

	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	if err := h.tickets.Delete(ticketID); err != nil {
		respondServiceError(ctx, err)
		return
	}

	BroadcastTicketRefresh(ticket.ProjectID)
	ctx.JSON(http.StatusOK, gin.H{"message": "Ticket deleted successfully"})
}

func toTicketResponse(ticket *models.Ticket) TicketResponse {
	response := TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		ProjectID:   ticket.ProjectID,
		CreatedBy: types.UserResponse{
			ID:    ticket.CreatedBy.ID,
			Name:  ticket.CreatedBy.Name,
			Email: ticket.CreatedBy.Email,
		},
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
	}

	if ticket.Assignee != nil {
		response.Assignee = &types.UserResponse{
			ID:    ticket.Assignee.ID,
			Name:  ticket.Assignee.Name,
			Email: ticket.Assignee.Email,
		}
	}

	return response
}
