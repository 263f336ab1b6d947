package handlers

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"chatdesk/api/apperrors"
	"chatdesk/api/middleware"
	"chatdesk/api/models"
	"chatdesk/api/store"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the custom binding rules used by request
// models. It must run before the first request is bound.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = v.RegisterValidation("chatrole", validChatRole)
	})
	return registerErr
}

func validChatRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case models.RoleUser, models.RoleAssistant, models.RoleSystem:
		return true
	}
	return false
}

// respondError writes {"error": message} with the status matching err's kind.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= 500 {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperrors.PublicMessage(err)})
}

func bindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(400, gin.H{"error": "Invalid request body", "details": err.Error()})
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}

// ownedBusiness loads the :id business for the signed-in owner, writing the
// error response itself when it fails.
func ownedBusiness(c *gin.Context, stores *store.Stores) (*models.Business, bool) {
	b, err := stores.Businesses.GetOwnedBusiness(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return b, true
}
