package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrEmptyCheckout):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvoiceNotAvailable):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// writeError keeps storage details out of responses; they only go to the log.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithFields(logrus.Fields{
			"path":    c.FullPath(),
			"user_id": identity(c).UserID,
		}).Error("Unhandled error")
		c.JSON(status, gin.H{"error": "something went wrong, please try again"})
		return
	}

	body := gin.H{"error": err.Error()}
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		body["productId"] = stockErr.ProductID
		body["available"] = stockErr.Available
	}
	c.JSON(status, body)
}

func (h *Handler) bindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
}
