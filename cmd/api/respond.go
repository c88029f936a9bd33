package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/berlinbruno/podpirate/internal/apperr"
)

// respondError maps a failure to an HTTP status. Structured failures carry
// their stable code across the wire; anything else is an opaque 500.
func respondError(c *gin.Context, err error) {
	if appErr, ok := apperr.From(err); ok {
		c.JSON(statusFor(appErr.Kind), gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
			"detail":  appErr.Detail,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "INTERNAL_ERROR",
		"message": "Something went wrong",
	})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindToken:
		return http.StatusUnauthorized
	case apperr.KindUnavailable:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// pageParams reads page/size query parameters with sane bounds.
func pageParams(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 0 {
		page = 0
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}

// pagedResponse is the envelope for every paginated list.
func pagedResponse(items interface{}, total int64, page, size int) gin.H {
	return gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	}
}

// episodeIndex parses the positional episode id from the route.
func episodeIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_EPISODE_INDEX",
			"message": "Episode index must be a non-negative integer",
		})
		return 0, false
	}
	return index, true
}
