package handler

import (
	"errors"
	"net/http"
	"sync"

	"astro_consult/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

var validatorOnce sync.Once

// registerValidators adds the `objectid` binding tag to gin's validator
func registerValidators() {
	validatorOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
				_, err := bson.ObjectIDFromHex(fl.Field().String())
				return err == nil
			})
		}
	})
}

// statusFor maps a service error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err to the client. Unexpected errors are logged and hidden behind fallback.
func respondError(c *gin.Context, log *zap.Logger, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error(fallback, zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondBindError reports a request that failed binding or validation
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "objectid" {
				c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidID.Error()})
				return
			}
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}
