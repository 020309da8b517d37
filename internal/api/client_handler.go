package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/apperr"
	"github.com/EvgeniyGal/hr-agency/internal/database"
)

// ClientHandler covers the employer-company CRUD surface.
type ClientHandler struct {
	db       *gorm.DB
	activity *ActivityRecorder
}

// NewClientHandler builds the handler.
func NewClientHandler(db *gorm.DB, activity *ActivityRecorder) *ClientHandler {
	return &ClientHandler{db: db, activity: activity}
}

var errInvalidEntityID = errors.New("invalid entity id")

type clientRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=255"`
	Industry    string `json:"industry" binding:"omitempty,max=128"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone" binding:"omitempty,max=64"`
	Website     string `json:"website" binding:"omitempty,url"`
	Description string `json:"description"`
}

type clientResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Industry    string    `json:"industry,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Website     string    `json:"website,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newClientResponse(client database.Client) clientResponse {
	return clientResponse{
		ID:          client.ID,
		Name:        client.Name,
		Industry:    client.Industry,
		Email:       client.Email,
		Phone:       client.Phone,
		Website:     client.Website,
		Description: client.Description,
		CreatedAt:   client.CreatedAt,
	}
}

// CreateClient adds an employer company.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req clientRequest
	if !bindJSON(c, &req) {
		return
	}

	client := database.Client{
		Name:        req.Name,
		Industry:    req.Industry,
		Email:       req.Email,
		Phone:       req.Phone,
		Website:     req.Website,
		Description: req.Description,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&client).Error; err != nil {
		Internal(c, "failed to create client")
		return
	}

	h.activity.Record(c, "client.created", "client", client.ID, map[string]any{"name": client.Name})
	c.JSON(http.StatusCreated, newClientResponse(client))
}

// ListClients lists non-deleted clients, newest first, with an optional
// name search.
func (h *ClientHandler) ListClients(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&database.Client{})
	if q := c.Query("q"); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var clients []database.Client
	if err := query.Order("created_at DESC").Find(&clients).Error; err != nil {
		Internal(c, "failed to list clients")
		return
	}

	items := make([]clientResponse, 0, len(clients))
	for _, client := range clients {
		items = append(items, newClientResponse(client))
	}
	c.JSON(http.StatusOK, items)
}

// GetClient returns one client with its jobs.
func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.findClient(c.Request.Context(), c.Param("id"), "Jobs")
	if err != nil {
		respondLookupError(c, err, "client")
		return
	}

	jobs := make([]gin.H, 0, len(client.Jobs))
	for _, job := range client.Jobs {
		jobs = append(jobs, gin.H{
			"id":     job.ID,
			"title":  job.Title,
			"status": job.Status,
		})
	}

	resp := newClientResponse(*client)
	c.JSON(http.StatusOK, gin.H{
		"id":          resp.ID,
		"name":        resp.Name,
		"industry":    resp.Industry,
		"email":       resp.Email,
		"phone":       resp.Phone,
		"website":     resp.Website,
		"description": resp.Description,
		"created_at":  resp.CreatedAt,
		"jobs":        jobs,
	})
}

// UpdateClient overwrites a client's fields.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var req clientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.findClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLookupError(c, err, "client")
		return
	}

	updates := map[string]any{
		"name":        req.Name,
		"industry":    req.Industry,
		"email":       req.Email,
		"phone":       req.Phone,
		"website":     req.Website,
		"description": req.Description,
	}
	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Model(client).Updates(updates).Error; err != nil {
		Internal(c, "failed to update client")
		return
	}
	if err := h.db.WithContext(ctx).First(client, client.ID).Error; err != nil {
		Internal(c, "failed to reload client")
		return
	}

	h.activity.Record(c, "client.updated", "client", client.ID, nil)
	c.JSON(http.StatusOK, newClientResponse(*client))
}

// DeleteClient soft-deletes a client. The row keeps its data; standard
// reads stop returning it.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	client, err := h.findClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLookupError(c, err, "client")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(&database.Client{}, client.ID).Error; err != nil {
		Internal(c, "failed to delete client")
		return
	}

	h.activity.Record(c, "client.deleted", "client", client.ID, nil)
	c.Status(http.StatusNoContent)
}

func (h *ClientHandler) findClient(ctx context.Context, idParam string, preloads ...string) (*database.Client, error) {
	id, err := parseEntityID(idParam)
	if err != nil {
		return nil, err
	}

	query := h.db.WithContext(ctx)
	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	var client database.Client
	if err := query.First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func parseEntityID(idParam string) (uint, error) {
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidEntityID
	}
	return uint(id), nil
}

// respondLookupError maps the shared find-by-id failure modes through the
// error taxonomy.
func respondLookupError(c *gin.Context, err error, entity string) {
	switch {
	case errors.Is(err, errInvalidEntityID):
		FromError(c, apperr.Invalid("invalid "+entity+" id", nil))
	case errors.Is(err, gorm.ErrRecordNotFound):
		FromError(c, apperr.New(apperr.NotFound, entity+" not found"))
	default:
		FromError(c, err)
	}
}
