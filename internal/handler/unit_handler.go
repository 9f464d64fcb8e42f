package handler

import (
	"fmt"
	"net/http"

	"kejani/internal/middleware"
	"kejani/internal/models"
	"kejani/internal/repository"
	"kejani/internal/service"

	"github.com/gin-gonic/gin"
)

type UnitHandler struct {
	svc       *service.UnitService
	auditRepo *repository.AuditLogRepository
}

func NewUnitHandler(svc *service.UnitService, auditRepo *repository.AuditLogRepository) *UnitHandler {
	return &UnitHandler{svc: svc, auditRepo: auditRepo}
}

type UnitRequest struct {
	PropertyID  uint    `json:"property_id" binding:"required"`
	UnitNumber  string  `json:"unit_number" binding:"required,max=50"`
	Bedrooms    int     `json:"bedrooms" binding:"min=0"`
	Bathrooms   float64 `json:"bathrooms" binding:"min=0"`
	RentCents   int64   `json:"rent_cents" binding:"required,gt=0"`
	Status      string  `json:"status" binding:"omitempty,oneof=available occupied maintenance reserved"`
	Description string  `json:"description"`
}

func (h *UnitHandler) Create(c *gin.Context) {
	id := middleware.GetIdentity(c)
	var req UnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.svc.Create(id, service.UnitInput{
		PropertyID:  req.PropertyID,
		UnitNumber:  req.UnitNumber,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		RentCents:   req.RentCents,
		Status:      req.Status,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, id.UserID, "unit.create", u.ID, "")
	c.JSON(http.StatusCreated, gin.H{"unit": u})
}

func (h *UnitHandler) List(c *gin.Context) {
	id := middleware.GetIdentity(c)
	limit, offset := pagination(c)
	list, err := h.svc.List(id, c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": list})
}

func (h *UnitHandler) Get(c *gin.Context) {
	id := middleware.GetIdentity(c)
	u, err := h.svc.Get(id, pathID(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unit": u})
}

func (h *UnitHandler) Update(c *gin.Context) {
	id := middleware.GetIdentity(c)
	var req struct {
		UnitNumber  *string  `json:"unit_number"`
		Bedrooms    *int     `json:"bedrooms"`
		Bathrooms   *float64 `json:"bathrooms"`
		RentCents   *int64   `json:"rent_cents"`
		Status      *string  `json:"status"`
		Description *string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.svc.Update(id, pathID(c, "id"), service.UnitUpdate{
		UnitNumber:  req.UnitNumber,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		RentCents:   req.RentCents,
		Status:      req.Status,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unit": u})
}

func (h *UnitHandler) AssignTenant(c *gin.Context) {
	id := middleware.GetIdentity(c)
	var req struct {
		TenantID uint `json:"tenant_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	unitID := pathID(c, "id")
	u, err := h.svc.AssignTenant(id, unitID, req.TenantID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, id.UserID, "unit.assign_tenant", unitID, fmt.Sprintf(`{"tenant_id":%d}`, req.TenantID))
	c.JSON(http.StatusOK, gin.H{"unit": u})
}

func (h *UnitHandler) UnassignTenant(c *gin.Context) {
	id := middleware.GetIdentity(c)
	unitID := pathID(c, "id")
	u, err := h.svc.UnassignTenant(id, unitID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, id.UserID, "unit.unassign_tenant", unitID, "")
	c.JSON(http.StatusOK, gin.H{"unit": u})
}

func (h *UnitHandler) TransferTenant(c *gin.Context) {
	id := middleware.GetIdentity(c)
	var req struct {
		TenantID uint `json:"tenant_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	unitID := pathID(c, "id")
	u, err := h.svc.TransferTenant(id, unitID, req.TenantID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, id.UserID, "unit.transfer_tenant", unitID, fmt.Sprintf(`{"tenant_id":%d}`, req.TenantID))
	c.JSON(http.StatusOK, gin.H{"unit": u})
}

func (h *UnitHandler) audit(c *gin.Context, actorID uint, action string, unitID uint, metadata string) {
	if h.auditRepo == nil {
		return
	}
	actor := actorID
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &actor,
		Action:     action,
		Resource:   "unit",
		ResourceID: itoa(unitID),
		Metadata:   metadata,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
}
