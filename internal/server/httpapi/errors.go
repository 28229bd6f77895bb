package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/vincentino1/account-service/internal/common"
)

// writeError maps service errors onto status codes. Unexpected errors are
// logged and reported as a bare 500.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "Invalid credentials"})
	case errors.Is(err, common.ErrorUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
	case errors.Is(err, common.ErrorNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Error: "Account not found"})
	case errors.Is(err, common.ErrorAlreadyExists):
		c.AbortWithStatusJSON(http.StatusConflict, errorBody{Error: "Email already exists"})
	case errors.Is(err, common.ErrStorageUnavailable):
		s.logger.Error(c.Request.Context(), "storage unavailable", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorBody{Error: "Service Unavailable"})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
	}
}

func invalidPayload(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "Invalid payload", Details: validationDetails(err)})
}

func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[jsonFieldName(fe.Field())] = fe.Tag()
		}
		return out
	}
	return map[string]string{"body": err.Error()}
}

func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// bindStrict decodes a JSON body rejecting unknown fields, then runs the
// binding validator.
func bindStrict(c *gin.Context, obj any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return binding.Validator.ValidateStruct(obj)
}
