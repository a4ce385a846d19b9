package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/platform/apierr"
)

// uuidParam parses a path parameter, writing a 400 and returning false when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, errInvalidID(name))
		return uuid.Nil, false
	}
	return id, true
}

type invalidIDError string

func (e invalidIDError) Error() string { return "invalid " + string(e) }

func errInvalidID(name string) error { return invalidIDError(name) }

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return false
	}
	return true
}
