package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/deep020206/FUTURE-FS-01/internal/intake"
	"github.com/deep020206/FUTURE-FS-01/internal/model"
	"github.com/deep020206/FUTURE-FS-01/internal/service"
)

const maxBodyBytes = 64 << 10

// Error bodies for POST /api/contact.
const (
	errFieldsRequired = "All fields are required"
	errInvalidEmail   = "Please provide a valid email address"
	errMessageTooLong = "Message is too long"
	errInvalidBody    = "Invalid request body"
	errSubmitFailed   = "Server error. Please try again."
	errListFailed     = "Server error"
)

// ContactHandler handles contact form submission and listing.
type ContactHandler struct {
	contactService service.ContactService
	logger         *slog.Logger
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService, logger *slog.Logger) *ContactHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactHandler{contactService: contactService, logger: logger}
}

// submitRequest is the body for POST /api/contact, JSON or form encoded.
type submitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type submitResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	EmailSent bool   `json:"emailSent"`
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, err := decodeSubmitRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	result, err := h.contactService.Submit(r.Context(), &model.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, validationMessage(verr))
			return
		}
		h.logger.ErrorContext(r.Context(), "submit contact message", "error", err)
		writeError(w, http.StatusInternalServerError, errSubmitFailed)
		return
	}

	writeJSON(w, http.StatusCreated, submitResponse{
		Success:   true,
		Message:   result.Message,
		EmailSent: result.EmailSent(),
	})
}

// decodeSubmitRequest reads a JSON or urlencoded body. An empty JSON body
// decodes to an empty request so validation reports the missing fields.
func decodeSubmitRequest(r *http.Request) (submitRequest, error) {
	var req submitRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.Name = r.PostForm.Get("name")
		req.Email = r.PostForm.Get("email")
		req.Message = r.PostForm.Get("message")
		return req, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}

func validationMessage(verr *intake.ValidationError) string {
	switch {
	case verr.IsMissing():
		return errFieldsRequired
	case verr.HasInvalid("email"):
		return errInvalidEmail
	default:
		return errMessageTooLong
	}
}

// List handles GET /api/contact.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.contactService.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list contact messages", "error", err)
		writeError(w, http.StatusInternalServerError, errListFailed)
		return
	}

	// Return [] not null for empty lists
	if messages == nil {
		messages = []*model.ContactMessage{}
	}

	writeJSON(w, http.StatusOK, messages)
}
