package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"mortgage-underwriting/internal/infrastructure/logging"
	"mortgage-underwriting/pkg/id"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	HeaderActorID   = "Ax-Actor-Id"
	HeaderReplay    = "Ax-Idempotent-Replay"

	defaultInFlightTTL = 60 * time.Second
	defaultMaxSkew     = 10 * time.Minute
	storeTimeout       = 2 * time.Second
)

type IdempotencyOption func(*idempotency)

// WithInFlightTTL bounds how long a reservation survives a handler that never finishes.
func WithInFlightTTL(d time.Duration) IdempotencyOption {
	return func(m *idempotency) { m.inFlightTTL = d }
}

// WithMaxSkew sets the accepted distance between Ax-Request-At and the server clock.
func WithMaxSkew(d time.Duration) IdempotencyOption { return func(m *idempotency) { m.maxSkew = d } }

func WithClock(now func() time.Time) IdempotencyOption { return func(m *idempotency) { m.now = now } }

type idempotency struct {
	store       store
	ttl         time.Duration
	inFlightTTL time.Duration
	maxSkew     time.Duration
	now         func() time.Time
	log         logrus.FieldLogger
}

// recorder tees the response so it can be stored for replay.
type recorder struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// replayable reports whether a final response may be served again for the same request id.
// Conflicts and server errors are transient: the client must be able to retry them.
func replayable(status int) bool { return status < 500 && status != http.StatusConflict }

func reject(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// IdempotencyMiddleware makes mutating requests safe to retry. A request is identified by
// method, URL path, Ax-Actor-Id and Ax-Request-Id; a repeat with the same body gets the stored
// response (ttl long), a repeat with another body or while the first is running gets 409.
func IdempotencyMiddleware(rdb redis.Cmdable, ttl time.Duration, log logrus.FieldLogger, opts ...IdempotencyOption) echo.MiddlewareFunc {
	m := &idempotency{
		store:       store{rdb: rdb},
		ttl:         ttl,
		inFlightTTL: defaultInFlightTTL,
		maxSkew:     defaultMaxSkew,
		now:         func() time.Time { return time.Now().UTC() },
		log:         log,
	}
	for _, o := range opts {
		o(m)
	}
	return m.handle
}

func (m *idempotency) handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		switch req.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return next(c)
		}

		reqID := strings.ToLower(strings.TrimSpace(req.Header.Get(HeaderRequestID)))
		if reqID == "" {
			return reject(c, http.StatusBadRequest, "missing "+HeaderRequestID)
		}
		if !validRequestID(reqID) {
			return reject(c, http.StatusBadRequest, "invalid "+HeaderRequestID+" format")
		}
		reqAt, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
		if err != nil {
			return reject(c, http.StatusBadRequest, err.Error())
		}
		now := m.now()
		if reqAt.Before(now.Add(-m.maxSkew)) || reqAt.After(now.Add(m.maxSkew)) {
			return reject(c, http.StatusBadRequest, HeaderRequestAt+" too skewed")
		}
		actorID := strings.TrimSpace(req.Header.Get(HeaderActorID))
		if actorID == "" {
			return reject(c, http.StatusBadRequest, "missing "+HeaderActorID)
		}
		if !id.Valid(actorID) {
			return reject(c, http.StatusBadRequest, "invalid "+HeaderActorID)
		}

		var body []byte
		if req.Body != nil {
			if body, err = io.ReadAll(req.Body); err != nil {
				return reject(c, http.StatusBadRequest, "unreadable body")
			}
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		fp := fingerprint(body)

		key := recordKey(req.Method, req.URL.Path, actorID, reqID)
		ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
		defer cancel()

		ok, err := m.store.reserve(ctx, key, record{Fingerprint: fp, RequestAt: reqAt, StoredAt: now}, m.inFlightTTL)
		if err != nil {
			logging.LogError(m.log, "middleware", "IdempotencyMiddleware", "reserve", map[string]string{"key": key}, err)
			return reject(c, http.StatusServiceUnavailable, "idempotency store unavailable")
		}
		if !ok {
			return m.repeat(ctx, c, key, fp)
		}

		rec := &recorder{ResponseWriter: c.Response().Writer, status: http.StatusOK}
		c.Response().Writer = rec
		if err := next(c); err != nil {
			c.Error(err)
		}

		// the request context may be gone by now
		bg, cancelBg := context.WithTimeout(context.Background(), storeTimeout)
		defer cancelBg()
		if !replayable(rec.status) {
			if err := m.store.release(bg, key); err != nil {
				logging.LogError(m.log, "middleware", "IdempotencyMiddleware", "release", map[string]string{"key": key}, err)
			}
			return nil
		}
		final := record{
			Done:        true,
			Status:      rec.status,
			ContentType: rec.Header().Get(echo.HeaderContentType),
			Body:        rec.body.Bytes(),
			Fingerprint: fp,
			RequestAt:   reqAt,
			StoredAt:    m.now(),
		}
		if err := m.store.complete(bg, key, final, m.ttl); err != nil {
			logging.LogError(m.log, "middleware", "IdempotencyMiddleware", "complete", map[string]string{"key": key}, err)
		}
		return nil
	}
}

func (m *idempotency) repeat(ctx context.Context, c echo.Context, key, fp string) error {
	cur, err := m.store.load(ctx, key)
	if err != nil {
		logging.LogError(m.log, "middleware", "IdempotencyMiddleware", "load", map[string]string{"key": key}, err)
		return reject(c, http.StatusServiceUnavailable, "idempotency store unavailable")
	}
	if cur.Fingerprint != "" && cur.Fingerprint != fp {
		return reject(c, http.StatusConflict, HeaderRequestID+" reused with different body")
	}
	if !cur.Done {
		return reject(c, http.StatusConflict, "request is already in progress")
	}
	ct := cur.ContentType
	if ct == "" {
		ct = echo.MIMEApplicationJSONCharsetUTF8
	}
	c.Response().Header().Set(HeaderReplay, "true")
	return c.Blob(cur.Status, ct, cur.Body)
}
