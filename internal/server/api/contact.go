package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/hlog"
	"golang.org/x/time/rate"

	"abbaytv/portal/internal/contact"
	"abbaytv/portal/internal/models"
)

const maxContactBody = 64 << 10

// ContactRepository stores contact messages.
type ContactRepository interface {
	Append(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context, limit int) ([]models.ContactMessage, error)
}

// ContactResponse confirms a stored submission.
type ContactResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ContactHandler accepts contact form submissions.
type ContactHandler struct {
	repo    ContactRepository
	limiter *clientLimiter
	now     func() time.Time
}

// NewContactHandler allows perMinute submissions per client address. A
// non-positive value disables rate limiting.
func NewContactHandler(repo ContactRepository, perMinute int) *ContactHandler {
	return &ContactHandler{
		repo:    repo,
		limiter: newClientLimiter(perMinute),
		now:     time.Now,
	}
}

// PostContact handles POST /v1/contact.
func (h *ContactHandler) PostContact(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	if !h.limiter.Allow(clientIP(r)) {
		log.Warn().Str("client", clientIP(r)).Msg("Contact submission rate limited")
		w.Header().Set("Retry-After", "60")
		writeError(w, r, http.StatusTooManyRequests, "Too many messages, please try again later")
		return
	}

	var form contact.Form
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBody))
	if err := dec.Decode(&form); err != nil {
		log.Warn().Err(err).Msg("Invalid contact form body")
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := contact.NewMessage(form, h.now())
	if err != nil {
		var ve *contact.ValidationError
		if errors.As(err, &ve) {
			log.Debug().Str("field", ve.Field).Msg("Contact form rejected")
			writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: ve.Message, Field: ve.Field})
			return
		}
		log.Error().Err(err).Msg("Failed to build contact message")
		writeError(w, r, http.StatusInternalServerError, "Failed to send message. Please try again.")
		return
	}

	if err := h.repo.Append(r.Context(), msg); err != nil {
		log.Error().Err(err).Msg("Failed to store contact message")
		writeError(w, r, http.StatusInternalServerError, "Failed to send message. Please try again.")
		return
	}

	writeJSON(w, r, http.StatusCreated, ContactResponse{
		ID:      msg.ID,
		Status:  msg.Status,
		Message: "Message sent successfully! We will contact you soon.",
	})
}

// ExportMessages handles GET /v1/contact-messages, streaming every message as CSV.
func (h *ContactHandler) ExportMessages(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	log.Debug().Msg("Export contact messages request received")

	messages, err := h.repo.List(r.Context(), 0)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query contact messages")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=contact_messages.csv")

	csvWriter := csv.NewWriter(w)

	header := []string{"id", "date", "status", "name", "email", "phone", "subject", "message"}
	if err := csvWriter.Write(header); err != nil {
		log.Error().Err(err).Msg("Failed to write CSV header")
		http.Error(w, "Error generating CSV", http.StatusInternalServerError)
		return
	}

	for _, m := range messages {
		record := []string{m.ID, m.Date, m.Status, m.Name, m.Email, m.Phone, m.Subject, m.Message}
		if err := csvWriter.Write(record); err != nil {
			log.Error().Err(err).Msg("Failed to write CSV record")
			return
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		log.Error().Err(err).Msg("Error flushing CSV data")
		return
	}

	log.Info().Int("message_count", len(messages)).Msg("Exported contact messages as CSV")
}

// clientLimiter keeps one token bucket per client address.
type clientLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newClientLimiter(perMinute int) *clientLimiter {
	if perMinute <= 0 {
		return &clientLimiter{limit: rate.Inf}
	}
	return &clientLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *clientLimiter) Allow(client string) bool {
	if l.limit == rate.Inf {
		return true
	}

	l.mu.Lock()
	lim, ok := l.limiters[client]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[client] = lim
	}
	l.mu.Unlock()

	return lim.Allow()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
