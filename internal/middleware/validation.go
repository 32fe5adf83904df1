package middleware

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationError describes a single failed field constraint.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var tagMessages = map[string]string{
	"required": "field is required",
	"email":    "invalid email format",
	"min":      "value is too short",
	"max":      "value is too long",
}

// UseJSONFieldNames makes binding validation errors report the json tag
// of a field instead of its Go name. Call once before routes are served.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

// RespondBindError writes a 400 for a failed request bind. Validator
// errors are broken out per field; malformed JSON gets the raw message.
func RespondBindError(c *gin.Context, err error) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := make([]ValidationError, 0, len(errs))
		for _, e := range errs {
			msg := tagMessages[e.Tag()]
			if msg == "" {
				msg = e.Error()
			}
			details = append(details, ValidationError{Field: e.Field(), Message: msg})
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "validation failed",
			"errors":  details,
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"message": err.Error(),
	})
}
