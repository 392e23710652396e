package middleware

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/medirent/backend/internal/interfaces/http/dto"
)

// SetupValidator configures the gin binding validator to report field names
// from json/form tags instead of Go struct field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// HandleValidationError answers a binding failure with the full violation list
func HandleValidationError(c *gin.Context, err error) {
	requestID := GetRequestID(c)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		details := make([]dto.ValidationDetail, 0, len(validationErrors))
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: validationMessage(e),
			})
		}
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"La requête contient des champs invalides",
			requestID,
			details,
		))
		return
	}

	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInvalidJSON,
		"Corps de requête illisible",
		requestID,
	))
}

// validationMessage returns a user-facing French message for a binding violation
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Ce champ est obligatoire"
	case "email":
		return "Format d'email invalide"
	case "uuid":
		return "Identifiant invalide"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Doit contenir au moins " + e.Param() + " caractères"
		}
		return "Doit être au moins " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Doit contenir au plus " + e.Param() + " caractères"
		}
		return "Doit être au plus " + e.Param()
	case "oneof":
		return "Doit être l'une des valeurs: " + e.Param()
	case "gt":
		return "Doit être supérieur à " + e.Param()
	case "gte":
		return "Doit être supérieur ou égal à " + e.Param()
	case "lt":
		return "Doit être inférieur à " + e.Param()
	case "lte":
		return "Doit être inférieur ou égal à " + e.Param()
	default:
		return "Valeur invalide"
	}
}
