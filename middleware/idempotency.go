package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/hantverk-dashboard/logger"
	"github.com/kendall-kelly/hantverk-dashboard/metrics"
	"github.com/kendall-kelly/hantverk-dashboard/models"
	"github.com/kendall-kelly/hantverk-dashboard/services"
)

// IdempotencyHeader names the client chosen request key
const IdempotencyHeader = "Idempotency-Key"

// ReplayHeader is set on responses served from the store
const ReplayHeader = "Idempotent-Replayed"

// pendingTTL bounds how long a claim survives a request that never finished
const pendingTTL = time.Minute

type idempotencyRecord struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	ContentType string `json:"content_type,omitempty"`
	RequestHash string `json:"request_hash"`
	// Pending marks a claim held while the first request is still running
	Pending bool `json:"pending,omitempty"`
}

// Idempotency replays the stored response when a request repeats an Idempotency-Key.
// Requests without the header pass straight through. Reusing a key with a different
// body is rejected with 409, and so is a repeat that arrives while the first request
// is still running. Only successful responses are stored so a rejected request may be
// retried with the same key.
func Idempotency(store services.IdempotencyStore, ttl time.Duration, log *logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempotencyKey := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		if idempotencyKey == "" || store == nil {
			c.Next()
			return
		}
		ctx := log.WithField(c.Request.Context(), "idempotency_key", idempotencyKey)

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abortWithDetail(c, http.StatusBadRequest, "INVALID_BODY", "Kunde inte läsa förfrågan")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		requestHash := hashBody(body)
		key := store.IdempotencyKey(c.Request.Method+"|"+c.FullPath(), idempotencyKey)

		stored, found, err := store.Get(ctx, key)
		if err != nil {
			log.Error(ctx, "idempotency.lookup_failed", err)
			abortWithDetail(c, http.StatusServiceUnavailable, "IDEMPOTENCY_UNAVAILABLE", "Tjänsten är tillfälligt otillgänglig")
			return
		}
		if found {
			respondFromStore(ctx, c, stored, requestHash, log, m)
			return
		}

		claim, err := json.Marshal(idempotencyRecord{RequestHash: requestHash, Pending: true})
		if err != nil {
			log.Error(ctx, "idempotency.marshal_failed", err)
			abortWithDetail(c, http.StatusInternalServerError, "IDEMPOTENCY_CORRUPT", "Kunde inte läsa sparat svar")
			return
		}
		claimTTL := pendingTTL
		if ttl > 0 && ttl < claimTTL {
			claimTTL = ttl
		}
		claimed, err := store.SetNX(ctx, key, string(claim), claimTTL)
		if err != nil {
			log.Error(ctx, "idempotency.claim_failed", err)
			abortWithDetail(c, http.StatusServiceUnavailable, "IDEMPOTENCY_UNAVAILABLE", "Tjänsten är tillfälligt otillgänglig")
			return
		}
		if !claimed {
			// another request with this key won the race
			if stored, found, err = store.Get(ctx, key); err == nil && found {
				respondFromStore(ctx, c, stored, requestHash, log, m)
				return
			}
			abortInProgress(c)
			return
		}

		capture := &responseCapture{ResponseWriter: c.Writer}
		c.Writer = capture
		c.Next()

		status := capture.Status()
		if status < 200 || status > 299 {
			if err := store.Delete(ctx, key); err != nil {
				log.Error(ctx, "idempotency.release_failed", err)
			}
			return
		}
		record := idempotencyRecord{
			Status:      status,
			Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
			ContentType: capture.Header().Get("Content-Type"),
			RequestHash: requestHash,
		}
		payload, err := json.Marshal(record)
		if err != nil {
			log.Error(ctx, "idempotency.marshal_failed", err)
			return
		}
		if err := store.Set(ctx, key, string(payload), ttl); err != nil {
			log.Error(ctx, "idempotency.persist_failed", err)
		}
	}
}

func respondFromStore(ctx context.Context, c *gin.Context, stored, requestHash string, log *logger.Logger, m *metrics.Metrics) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		log.Error(ctx, "idempotency.decode_failed", err)
		abortWithDetail(c, http.StatusInternalServerError, "IDEMPOTENCY_CORRUPT", "Kunde inte läsa sparat svar")
		return
	}
	if record.RequestHash != requestHash {
		abortWithDetail(c, http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency-Key används redan för en annan förfrågan")
		return
	}
	if record.Pending {
		abortInProgress(c)
		return
	}
	m.IdempotentReplay()
	log.Info(ctx, "idempotency.replayed")
	writeStoredResponse(c, record)
}

func abortInProgress(c *gin.Context) {
	abortWithDetail(c, http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "Förfrågan behandlas redan, försök igen om en stund")
}

func writeStoredResponse(c *gin.Context, record idempotencyRecord) {
	body, err := base64.StdEncoding.DecodeString(record.Body)
	if err != nil {
		abortWithDetail(c, http.StatusInternalServerError, "IDEMPOTENCY_CORRUPT", "Kunde inte läsa sparat svar")
		return
	}
	contentType := record.ContentType
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	c.Header(ReplayHeader, "true")
	c.Data(record.Status, contentType, body)
	c.Abort()
}

func abortWithDetail(c *gin.Context, status int, code, detail string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Detail: detail, Code: code})
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

type responseCapture struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *responseCapture) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}
