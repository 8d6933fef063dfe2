package respond

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"resume-builder/internal/shared/telemetry"
)

// ErrorResponse is the standardized error body.
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Issues  []Issue `json:"issues,omitempty"`
}

// Issue describes a single field-level validation problem.
type Issue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, issues []Issue) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if len(issues) > 0 {
		fields["issues"] = len(issues)
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    code,
		Message: message,
		Issues:  issues,
	})
}

// Issues converts a binding error into field-level issues.
func Issues(err error) []Issue {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]Issue, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, Issue{Field: fe.Field(), Issue: issueFor(fe)})
		}
		return out
	}
	if err == nil {
		return nil
	}
	return []Issue{{Field: "body", Issue: "malformed"}}
}

func issueFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "invalid email"
	case "max":
		return "too long"
	default:
		return "invalid"
	}
}

var jsonNamesOnce sync.Once

// UseJSONFieldNames makes validation issues report JSON field names instead of Go struct names.
func UseJSONFieldNames() {
	jsonNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}
