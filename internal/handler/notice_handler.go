package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"kejani/internal/middleware"
	"kejani/internal/models"
	"kejani/internal/repository"
	"kejani/internal/service"
	"kejani/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type NoticeHandler struct {
	svc       *service.NoticeService
	auditRepo *repository.AuditLogRepository
	cloud     cloudinary.Client
}

func NewNoticeHandler(svc *service.NoticeService, auditRepo *repository.AuditLogRepository, cloud cloudinary.Client) *NoticeHandler {
	return &NoticeHandler{svc: svc, auditRepo: auditRepo, cloud: cloud}
}

type CreateNoticeRequest struct {
	Title        string     `json:"title" binding:"required,max=200"`
	Body         string     `json:"body" binding:"required"`
	Priority     string     `json:"priority"`
	AudienceType string     `json:"audience_type" binding:"required"`
	PropertyID   uint       `json:"property_id"`
	UnitIDs      []uint     `json:"unit_ids"`
	TenantIDs    []uint     `json:"tenant_ids"`
	RequiresAck  bool       `json:"requires_acknowledgment"`
	Published    *bool      `json:"published"`
	PublishAt    *time.Time `json:"publish_at"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

func (h *NoticeHandler) Create(c *gin.Context) {
	id := middleware.GetIdentity(c)
	var req CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := h.svc.Create(id, service.NoticeInput{
		Title:        req.Title,
		Body:         req.Body,
		Priority:     req.Priority,
		AudienceType: req.AudienceType,
		PropertyID:   req.PropertyID,
		UnitIDs:      req.UnitIDs,
		TenantIDs:    req.TenantIDs,
		RequiresAck:  req.RequiresAck,
		Published:    req.Published,
		PublishAt:    req.PublishAt,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, id.UserID, "notice.create", n.ID)
	c.JSON(http.StatusCreated, gin.H{"notice": n})
}

// List returns notices the caller authored. Tenants read through /me/feed.
func (h *NoticeHandler) List(c *gin.Context) {
	id := middleware.GetIdentity(c)
	limit, offset := pagination(c)
	list, err := h.svc.ListByAuthor(id, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notices": list})
}

func (h *NoticeHandler) Get(c *gin.Context) {
	id := middleware.GetIdentity(c)
	n, err := h.svc.Get(id, pathID(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": n})
}

func (h *NoticeHandler) Update(c *gin.Context) {
	id := middleware.GetIdentity(c)
	var req struct {
		Title       *string    `json:"title"`
		Body        *string    `json:"body"`
		Priority    *string    `json:"priority"`
		RequiresAck *bool      `json:"requires_acknowledgment"`
		Published   *bool      `json:"published"`
		PublishAt   *time.Time `json:"publish_at"`
		ExpiresAt   *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	noticeID := pathID(c, "id")
	n, err := h.svc.Update(id, noticeID, service.NoticeUpdate{
		Title:       req.Title,
		Body:        req.Body,
		Priority:    req.Priority,
		RequiresAck: req.RequiresAck,
		Published:   req.Published,
		PublishAt:   req.PublishAt,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, id.UserID, "notice.update", noticeID)
	c.JSON(http.StatusOK, gin.H{"notice": n})
}

// MarkRead records a read receipt. The receipt row is the durable record,
// so this skips the audit log.
func (h *NoticeHandler) MarkRead(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if err := h.svc.MarkRead(id, pathID(c, "id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NoticeHandler) ReadReport(c *gin.Context) {
	id := middleware.GetIdentity(c)
	report, err := h.svc.ReadReport(id, pathID(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (h *NoticeHandler) Stats(c *gin.Context) {
	id := middleware.GetIdentity(c)
	stats, err := h.svc.Stats(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// AddAttachment uploads a file to Cloudinary and links it to a notice the
// caller authored. The asset is removed again if the link is refused.
func (h *NoticeHandler) AddAttachment(c *gin.Context) {
	id := middleware.GetIdentity(c)
	noticeID := pathID(c, "id")

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	folder := "kejani/notices/" + itoa(noticeID)
	publicID := "att_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	res, err := h.cloud.UploadAttachment(c.Request.Context(), f, folder, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	att := &models.NoticeAttachment{
		URL:         res.URL,
		PublicID:    res.PublicID,
		Filename:    file.Filename,
		SizeBytes:   res.Bytes,
		ContentType: file.Header.Get("Content-Type"),
	}
	if err := h.svc.AddAttachment(id, noticeID, att); err != nil {
		_ = h.cloud.Delete(c.Request.Context(), res.PublicID)
		respondError(c, err)
		return
	}
	h.audit(c, id.UserID, "notice.add_attachment", noticeID)
	c.JSON(http.StatusCreated, gin.H{"attachment": att})
}

func (h *NoticeHandler) audit(c *gin.Context, actorID uint, action string, noticeID uint) {
	if h.auditRepo == nil {
		return
	}
	actor := actorID
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &actor,
		Action:     action,
		Resource:   "notice",
		ResourceID: itoa(noticeID),
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
}
