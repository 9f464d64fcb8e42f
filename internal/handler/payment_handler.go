package handler

import (
	"net/http"
	"strconv"

	"kejani/internal/middleware"
	"kejani/internal/models"
	"kejani/internal/repository"
	"kejani/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	svc       *service.PaymentService
	auditRepo *repository.AuditLogRepository
}

func NewPaymentHandler(svc *service.PaymentService, auditRepo *repository.AuditLogRepository) *PaymentHandler {
	return &PaymentHandler{svc: svc, auditRepo: auditRepo}
}

type RecordPaymentRequest struct {
	UnitID      uint   `json:"unit_id" binding:"required"`
	TenantID    uint   `json:"tenant_id" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
	PaymentType string `json:"payment_type" binding:"required,oneof=rent deposit service late_fee maintenance other"`
	Method      string `json:"method" binding:"required,oneof=cash bank_transfer mobile_money check"`
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`
	Notes       string `json:"notes"`
}

func (h *PaymentHandler) Record(c *gin.Context) {
	id := middleware.GetIdentity(c)
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.Record(id, service.PaymentInput{
		UnitID:      req.UnitID,
		TenantID:    req.TenantID,
		AmountCents: req.AmountCents,
		PaymentType: req.PaymentType,
		Method:      req.Method,
		PeriodMonth: req.PeriodMonth,
		PeriodYear:  req.PeriodYear,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, id.UserID, "payment.record", p.ID)
	c.JSON(http.StatusCreated, gin.H{"payment": p})
}

func (h *PaymentHandler) List(c *gin.Context) {
	id := middleware.GetIdentity(c)
	limit, offset := pagination(c)
	list, err := h.svc.List(id, paymentFilter(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id := middleware.GetIdentity(c)
	p, err := h.svc.Get(id, pathID(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": p})
}

func (h *PaymentHandler) Summary(c *gin.Context) {
	id := middleware.GetIdentity(c)
	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))
	balances, err := h.svc.Summary(id, month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": balances})
}

func (h *PaymentHandler) MonthlyReport(c *gin.Context) {
	id := middleware.GetIdentity(c)
	months, _ := strconv.Atoi(c.Query("months"))
	report, err := h.svc.MonthlyReport(id, months)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (h *PaymentHandler) audit(c *gin.Context, actorID uint, action string, paymentID uint) {
	if h.auditRepo == nil {
		return
	}
	actor := actorID
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &actor,
		Action:     action,
		Resource:   "payment",
		ResourceID: itoa(paymentID),
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
}
