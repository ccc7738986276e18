package rest

import (
	"errors"
	"net/http"

	"arkom-be/internal/commission"
	"arkom-be/internal/listing"
	"arkom-be/internal/logger"
	"arkom-be/internal/notification"
	"arkom-be/internal/profile"
	"arkom-be/internal/taxonomy"
	"arkom-be/internal/theme"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ApiResponse struct {
	Message string      `json:"message"`
	Data    any         `json:"data,omitempty"`
	Error   bool        `json:"error,omitempty"`
	Meta    *Pagination `json:"meta,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func newPagination(page, limit, total int) *Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return &Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

func success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, ApiResponse{Message: message, Data: data})
}

func fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ApiResponse{Message: message, Error: true})
}

var (
	notFoundErrors = []error{
		taxonomy.ErrCatalogueNotFound,
		taxonomy.ErrCategoryNotFound,
		taxonomy.ErrFilterNotFound,
		taxonomy.ErrOptionNotFound,
		taxonomy.ErrAssignmentNotFound,
		listing.ErrListingNotFound,
		commission.ErrRequestNotFound,
		notification.ErrNotificationNotFound,
		profile.ErrProfileNotFound,
	}
	badRequestErrors = []error{
		taxonomy.ErrInvalidName,
		taxonomy.ErrNoChanges,
		listing.ErrInvalidTitle,
		listing.ErrInvalidPrice,
		listing.ErrInvalidCurrency,
		listing.ErrInvalidStatus,
		listing.ErrCategoryMismatch,
		listing.ErrNoChanges,
		commission.ErrOwnListing,
		commission.ErrListingClosed,
		commission.ErrMessageTooLong,
		commission.ErrEmptyRequestInput,
		notification.ErrInvalidNotification,
		profile.ErrInvalidDisplayName,
		profile.ErrInvalidEmail,
		theme.ErrInvalidColor,
	}
	forbiddenErrors = []error{
		listing.ErrForbidden,
		commission.ErrForbidden,
	}
	conflictErrors = []error{
		taxonomy.ErrStaleOrder,
		taxonomy.ErrFilterAlreadyAssigned,
		commission.ErrNotPending,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isAny(err, badRequestErrors):
		return http.StatusBadRequest
	case isAny(err, forbiddenErrors):
		return http.StatusForbidden
	case isAny(err, conflictErrors):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the status for err. Internal errors are logged
// and hidden from the client.
func writeError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.FromCtx(c.Request.Context()).Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		fail(c, code, "internal server error")
		return
	}
	fail(c, code, err.Error())
}
