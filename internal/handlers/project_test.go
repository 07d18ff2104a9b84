package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quarry-dev/quarry/internal/handlers"
	"github.com/quarry-dev/quarry/internal/middleware"
	"github.com/quarry-dev/quarry/internal/models"
	"github.com/quarry-dev/quarry/internal/service"
	"github.com/quarry-dev/quarry/internal/store/storetest"
	"github.com/quarry-dev/quarry/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// subjectMiddleware stands in for the JWT middleware and pins the subject.
func subjectMiddleware(user models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(types.ContextUserKey, middleware.AuthenticatedUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		})
		c.Next()
	}
}

func newProjectRouter(t *testing.T, db *storetest.DB, subject models.User) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := handlers.NewProjectHandler(service.NewProjectService(db.Projects(), db.Users()))

	r := gin.New()
	projects := r.Group("/api/projects", subjectMiddleware(subject))
	{
		projects.POST("", h.Create)
		projects.GET("", h.List)
		projects.GET("/:project_id", h.Get)
		projects.PATCH("/:project_id", h.Update)
		projects.DELETE("/:project_id", h.Delete)
		projects.POST("/:project_id/members", h.AddTeamMember)
		projects.DELETE("/:project_id/members/:user_id", h.RemoveTeamMember)
	}
	return r
}

func seedUser(t *testing.T, db *storetest.DB, name, email string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, PasswordHash: "x"}
	require.NoError(t, db.Users().Create(&user))
	return user
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateProjectEndpoint(t *testing.T) {
	db := storetest.NewDB()
	owner := seedUser(t, db, "Olivia", "olivia@example.com")
	r := newProjectRouter(t, db, owner)

	w := doJSON(t, r, http.MethodPost, "/api/projects", gin.H{
		"title":       "Sprint 1",
		"description": "First sprint",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp handlers.ProjectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "Sprint 1", resp.Title)
	require.Len(t, resp.TeamMembers, 1)
	assert.Equal(t, "owner", resp.TeamMembers[0].Role)
	assert.Equal(t, "olivia@example.com", resp.TeamMembers[0].User.Email)
}

func TestCreateProjectEndpoint_MissingFields(t *testing.T) {
	db := storetest.NewDB()
	owner := seedUser(t, db, "Olivia", "olivia@example.com")
	r := newProjectRouter(t, db, owner)

	w := doJSON(t, r, http.MethodPost, "/api/projects", gin.H{"title": "No description"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProjectEndpoint_NonMemberAndMissingLookAlike(t *testing.T) {
	db := storetest.NewDB()
	owner := seedUser(t, db, "Olivia", "olivia@example.com")
	outsider := seedUser(t, db, "Oscar", "oscar@example.com")

	ownerRouter := newProjectRouter(t, db, owner)
	outsiderRouter := newProjectRouter(t, db, outsider)

	w := doJSON(t, ownerRouter, http.MethodPost, "/api/projects", gin.H{
		"title":       "Private",
		"description": "Not yours",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created handlers.ProjectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	existing := doJSON(t, outsiderRouter, http.MethodGet, projectPath(created.ID), nil)
	missing := doJSON(t, outsiderRouter, http.MethodGet, "/api/projects/9999", nil)

	assert.Equal(t, http.StatusNotFound, existing.Code)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	// Identical responses: probing cannot reveal whether the project exists.
	assert.Equal(t, missing.Body.String(), existing.Body.String())
}

func TestTeamMemberEndpoints(t *testing.T) {
	db := storetest.NewDB()
	owner := seedUser(t, db, "Olivia", "olivia@example.com")
	member := seedUser(t, db, "Mallory", "mallory@example.com")
	r := newProjectRouter(t, db, owner)

	w := doJSON(t, r, http.MethodPost, "/api/projects", gin.H{
		"title":       "Sprint 1",
		"description": "desc",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var project handlers.ProjectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	// Add by email.
	w = doJSON(t, r, http.MethodPost, projectPath(project.ID)+"/members", gin.H{"email": member.Email})
	require.Equal(t, http.StatusOK, w.Code)

	var updated handlers.ProjectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Len(t, updated.TeamMembers, 2)

	// Duplicate add conflicts.
	w = doJSON(t, r, http.MethodPost, projectPath(project.ID)+"/members", gin.H{"email": member.Email})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown email is a 404.
	w = doJSON(t, r, http.MethodPost, projectPath(project.ID)+"/members", gin.H{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Removing the owner is structurally disallowed.
	w = doJSON(t, r, http.MethodDelete, memberPath(project.ID, owner.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Removing the member works.
	w = doJSON(t, r, http.MethodDelete, memberPath(project.ID, member.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Len(t, updated.TeamMembers, 1)
}

func TestDeleteProjectEndpoint(t *testing.T) {
	db := storetest.NewDB()
	owner := seedUser(t, db, "Olivia", "olivia@example.com")
	r := newProjectRouter(t, db, owner)

	w := doJSON(t, r, http.MethodPost, "/api/projects", gin.H{
		"title":       "Doomed",
		"description": "desc",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var project handlers.ProjectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	w = doJSON(t, r, http.MethodDelete, projectPath(project.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, projectPath(project.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func projectPath(id uint) string {
	return "/api/projects/" + strconv.Itoa(int(id))
}

func memberPath(projectID, userID uint) string {
	return projectPath(projectID) + "/members/" + strconv.Itoa(int(userID))
}
