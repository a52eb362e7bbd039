package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/assettrack-backend/api/responses"
	pkgerrors "github.com/angelmondragon/assettrack-backend/pkg/errors"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/assettrack-backend/pkg/redis"
)

const IdempotencyHeader = "Idempotency-Key"

type pathMatcher func(path string) bool

// idempotencyRule marks a mutation as replayable. Creates demand a key;
// transitions accept one, since a repeat already fails on state.
type idempotencyRule struct {
	method   string
	match    pathMatcher
	required bool
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, match: exact("/api/v1/assets"), required: true},
	{method: http.MethodPost, match: exact("/api/v1/assignments"), required: true},
	{method: http.MethodPost, match: exact("/api/v1/checkouts"), required: true},
	{method: http.MethodPost, match: exact("/api/v1/transfers"), required: true},
	{method: http.MethodPost, match: exact("/api/v1/maintenance"), required: true},
	{method: http.MethodPost, match: under("/api/v1/assignments/")},
	{method: http.MethodPost, match: under("/api/v1/checkouts/")},
	{method: http.MethodPost, match: under("/api/v1/transfers/")},
	{method: http.MethodPost, match: under("/api/v1/maintenance/")},
	{method: http.MethodPatch, match: under("/api/v1/maintenance/")},
}

type idempotencyRecord struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        string `json:"body"`
	RequestHash string `json:"request_hash"`
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Only 2xx responses are stored so a failed attempt can be retried.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := ruleFor(r.Method, r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if key == "" {
				if rule.required {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := hashRequest(body)
			storeKey := store.IdempotencyKey(idempotencyScope(r), key)
			stored, err := store.Get(r.Context(), storeKey)
			if err != nil && !errors.Is(err, redis.Nil) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if stored != "" {
				var record idempotencyRecord
				if err := json.Unmarshal([]byte(stored), &record); err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
					return
				}
				if record.RequestHash != hash {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				replay(w, record)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			if capture.status < 200 || capture.status >= 300 {
				return
			}
			payload, err := json.Marshal(idempotencyRecord{
				Status:      capture.status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
				RequestHash: hash,
			})
			if err != nil {
				logError(r.Context(), logg, "marshal idempotency record", err)
				return
			}
			if _, err := store.SetNX(r.Context(), storeKey, string(payload), ttl); err != nil {
				logError(r.Context(), logg, "persist idempotency record", err)
			}
		})
	}
}

func ruleFor(method, path string) (idempotencyRule, bool) {
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.match(path) {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

func idempotencyScope(r *http.Request) string {
	user := "anonymous"
	if id, ok := UserIDFromContext(r.Context()); ok {
		user = id.String()
	}
	return strings.Join([]string{user, r.Method, r.URL.Path}, "|")
}

func replay(w http.ResponseWriter, record idempotencyRecord) {
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(record.Status)
	if body, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(body)
	}
}

func hashRequest(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func exact(path string) pathMatcher {
	return func(p string) bool { return p == path }
}

func under(prefix string) pathMatcher {
	return func(p string) bool { return strings.HasPrefix(p, prefix) && len(p) > len(prefix) }
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
