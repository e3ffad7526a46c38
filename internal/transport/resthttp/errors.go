package resthttp

import (
	"errors"
	"net/http"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// errorResponse — единый формат тела ошибки API.
type errorResponse struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
}

const internalErrorMessage = "An unexpected error occurred"

// statusForError отображает доменные ошибки на HTTP-статусы.
// Любая нераспознанная ошибка считается внутренней.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrStockBelowZero),
		errors.Is(err, domain.ErrCustomerRequired),
		errors.Is(err, domain.ErrProductNameRequired),
		errors.Is(err, domain.ErrProductIDRequired),
		errors.Is(err, domain.ErrStockNegative):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError подбирает статус по ошибке. Текст внутренних ошибок наружу
// не раскрывается, вместо него уходит общее сообщение.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.WithField("path", r.URL.Path).Errorf("internal error: %v", err)
		message = internalErrorMessage
	}
	h.writeErrorStatus(w, r, status, message)
}

func (h *Handler) writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
	})
}
