package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiloutout/service-booking/internal/domain/shared"
)

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Paginated writes a 200 response with items and paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data":  items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// Error maps a domain error to its HTTP status.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch shared.KindOf(err) {
	case shared.KindValidation:
		status = http.StatusBadRequest
		message = err.Error()
	case shared.KindUnauthorized:
		status = http.StatusUnauthorized
		message = err.Error()
	case shared.KindForbidden:
		status = http.StatusForbidden
		message = err.Error()
	case shared.KindNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case shared.KindConflict:
		status = http.StatusConflict
		message = err.Error()
	case shared.KindInvalidState:
		status = http.StatusUnprocessableEntity
		message = err.Error()
	}

	c.JSON(status, gin.H{"error": message})
}
