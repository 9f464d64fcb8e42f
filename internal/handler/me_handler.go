package handler

import (
	"net/http"
	"strconv"

	"kejani/internal/middleware"
	"kejani/internal/repository"
	"kejani/internal/service"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	authSvc    *service.AuthService
	paymentSvc *service.PaymentService
	noticeSvc  *service.NoticeService
}

func NewMeHandler(authSvc *service.AuthService, paymentSvc *service.PaymentService, noticeSvc *service.NoticeService) *MeHandler {
	return &MeHandler{authSvc: authSvc, paymentSvc: paymentSvc, noticeSvc: noticeSvc}
}

func (h *MeHandler) GetProfile(c *gin.Context) {
	u, err := h.authSvc.GetProfile(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *MeHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Email     *string `json:"email" binding:"omitempty,email"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Phone     *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.authSvc.UpdateProfile(middleware.GetUserID(c), service.ProfileUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// Payments returns the caller's own payment history. Managers use
// /payments; this endpoint is scoped to tenant_id = caller regardless of
// filters.
func (h *MeHandler) Payments(c *gin.Context) {
	id := middleware.GetIdentity(c)
	limit, offset := pagination(c)
	list, err := h.paymentSvc.TenantHistory(id, paymentFilter(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}

// Feed returns the notices currently targeting the tenant, unread first,
// then by priority, then newest.
func (h *MeHandler) Feed(c *gin.Context) {
	id := middleware.GetIdentity(c)
	limit, offset := pagination(c)
	f := repository.FeedFilter{
		Priority:   c.Query("priority"),
		UnreadOnly: c.Query("unread_only") == "true",
	}
	items, err := h.noticeSvc.Feed(id, f, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notices": items})
}

// paymentFilter reads the shared payment listing filters from the query
// string.
func paymentFilter(c *gin.Context) repository.PaymentFilter {
	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))
	unitID, _ := strconv.ParseUint(c.Query("unit_id"), 10, 64)
	return repository.PaymentFilter{
		Year:   year,
		Month:  month,
		Type:   c.Query("type"),
		UnitID: uint(unitID),
	}
}
