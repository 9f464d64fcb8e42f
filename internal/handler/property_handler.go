package handler

import (
	"net/http"

	"kejani/internal/middleware"
	"kejani/internal/models"
	"kejani/internal/repository"
	"kejani/internal/service"

	"github.com/gin-gonic/gin"
)

type PropertyHandler struct {
	svc       *service.PropertyService
	auditRepo *repository.AuditLogRepository
}

func NewPropertyHandler(svc *service.PropertyService, auditRepo *repository.AuditLogRepository) *PropertyHandler {
	return &PropertyHandler{svc: svc, auditRepo: auditRepo}
}

type PropertyRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Address     string `json:"address" binding:"required,max=500"`
	Description string `json:"description"`
}

func (h *PropertyHandler) Create(c *gin.Context) {
	id := middleware.GetIdentity(c)
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.Create(id, service.PropertyInput{
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, id.UserID, "property.create", p.ID)
	c.JSON(http.StatusCreated, gin.H{"property": p})
}

func (h *PropertyHandler) List(c *gin.Context) {
	id := middleware.GetIdentity(c)
	limit, offset := pagination(c)
	list, err := h.svc.List(id, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": list})
}

func (h *PropertyHandler) Get(c *gin.Context) {
	id := middleware.GetIdentity(c)
	p, caretakers, err := h.svc.Get(id, pathID(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": p, "caretakers": caretakers})
}

func (h *PropertyHandler) Update(c *gin.Context) {
	id := middleware.GetIdentity(c)
	var req struct {
		Name        *string `json:"name"`
		Address     *string `json:"address"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.Update(id, pathID(c, "id"), service.PropertyUpdate{
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": p})
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	id := middleware.GetIdentity(c)
	propertyID := pathID(c, "id")
	if err := h.svc.Delete(id, propertyID); err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, id.UserID, "property.delete", propertyID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *PropertyHandler) LinkCaretaker(c *gin.Context) {
	id := middleware.GetIdentity(c)
	propertyID := pathID(c, "id")
	userID := pathID(c, "user_id")
	if err := h.svc.LinkCaretaker(id, propertyID, userID); err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, id.UserID, "property.link_caretaker", propertyID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *PropertyHandler) UnlinkCaretaker(c *gin.Context) {
	id := middleware.GetIdentity(c)
	propertyID := pathID(c, "id")
	userID := pathID(c, "user_id")
	if err := h.svc.UnlinkCaretaker(id, propertyID, userID); err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, id.UserID, "property.unlink_caretaker", propertyID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *PropertyHandler) audit(c *gin.Context, actorID uint, action string, propertyID uint) {
	if h.auditRepo == nil {
		return
	}
	actor := actorID
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &actor,
		Action:     action,
		Resource:   "property",
		ResourceID: itoa(propertyID),
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
}
