package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/prompttemplates/marketplace/internal/auth/domain"
	customerdomain "github.com/prompttemplates/marketplace/internal/customer/domain"
	paymentdomain "github.com/prompttemplates/marketplace/internal/payment/domain"
	"github.com/prompttemplates/marketplace/internal/storage"
	templatedomain "github.com/prompttemplates/marketplace/internal/template/domain"
	"go.uber.org/zap"
)

// envelope is the uniform response body for every JSON endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message})
}

var validationMessages = map[error]string{
	templatedomain.ErrInvalidID:         "Invalid template id",
	templatedomain.ErrInvalidName:       "Missing required fields",
	templatedomain.ErrInvalidPrice:      "Missing required fields",
	templatedomain.ErrMissingArchive:    "Template file is required",
	paymentdomain.ErrNoTemplates:        "Missing required fields",
	paymentdomain.ErrDuplicateTemplate:  "Duplicate template selection",
	paymentdomain.ErrUnknownTemplate:    "Unknown or inactive template",
	paymentdomain.ErrInvalidPhone:       "Invalid phone number",
	paymentdomain.ErrInvalidCustomer:    "Missing required fields",
	paymentdomain.ErrAmountMismatch:     "Amount does not match selected templates",
	customerdomain.ErrInvalidEmail:      "Invalid email address",
	storage.ErrInvalidFileType:          "Invalid file type",
	storage.ErrFileTooLarge:             "File exceeds the upload limit",
	errInvalidRequest:                   "Missing required fields",
}

var errInvalidRequest = errors.New("invalid_request")

// abort translates domain errors into the uniform envelope. Internal detail
// is only exposed outside production.
func (s *Server) abort(c *gin.Context, err error) {
	for sentinel, message := range validationMessages {
		if errors.Is(err, sentinel) {
			c.AbortWithStatusJSON(http.StatusBadRequest, envelope{Success: false, Message: message})
			return
		}
	}

	switch {
	case errors.Is(err, authdomain.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Success: false, Message: "Invalid credentials"})
	case errors.Is(err, authdomain.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Success: false, Message: "Authentication required"})
	case errors.Is(err, templatedomain.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, envelope{Success: false, Message: "Template not found"})
	case errors.Is(err, paymentdomain.ErrNotFound), errors.Is(err, storage.ErrFileNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, envelope{Success: false, Message: "Download not found or expired"})
	default:
		s.log.Error("request failed", zap.Error(err))
		message := "Something went wrong!"
		if !s.cfg.IsProduction() {
			message = err.Error()
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, envelope{Success: false, Message: message})
	}
}
