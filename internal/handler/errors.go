package handler

import (
	"errors"
	"net/http"
	"strconv"

	"kejani/internal/authz"
	"kejani/internal/domain"
	"kejani/internal/service"
	"kejani/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// respondError maps service errors onto HTTP statuses. A scope denial and a
// missing row are indistinguishable on the wire: both read as 404, so a
// response never confirms that an out-of-scope resource exists. Only role
// violations surface as 403.
func respondError(c *gin.Context, err error) {
	if d, ok := authz.AsDenial(err); ok {
		if d.ReadsAsNotFound() {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": d.Error()})
		return
	}
	if ce, ok := domain.AsConstraint(err); ok {
		c.JSON(http.StatusConflict, gin.H{"error": ce.Error(), "invariant": ce.Invariant})
		return
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflicting concurrent update, retry"})
	case errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidPriority),
		errors.Is(err, service.ErrInvalidAudience):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCreds):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		logging.Logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// pathID parses a numeric path parameter; 0 means absent or malformed.
func pathID(c *gin.Context, name string) uint {
	v, _ := strconv.ParseUint(c.Param(name), 10, 64)
	return uint(v)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// pagination reads limit/offset query params, clamping limit to 1..100.
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
