package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"salary-stream-loan/pkg/id"
)

const (
	// How long the in-progress marker lives if the process dies mid-request.
	provisionalLockTTL = 60 * time.Second
	// Allowed client/server clock skew for Ax-Request-At (in UTC).
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second

	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	// HeaderPartyID carries the caller's account id; loan and token operations
	// authorize against it.
	HeaderPartyID = "Ax-Party-Id"

	// PartyIDKey is the echo context key holding the validated caller id.
	PartyIDKey = "party_id"
)

// respRecorder tees the handler's response so it can be stored for replay.
type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// IdempotencyMiddleware guards mutating requests. Each one needs Ax-Request-Id,
// Ax-Request-At and Ax-Party-Id; the key is method + route + party + request id.
//
// A repeated request gets the stored response without reaching the handler, so
// a retried fund or payoff never moves tokens twice. Responses of 5xx are not
// stored: the transaction behind them rolled back, and the client may retry
// with the same request id.
func IdempotencyMiddleware(rdb redis.Cmdable, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	st := store{rdb: rdb, lockTTL: provisionalLockTTL}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID := strings.TrimSpace(req.Header.Get(HeaderRequestID))
			if reqID == "" {
				return fail(c, http.StatusBadRequest, "missing "+HeaderRequestID)
			}
			if !validRequestID(reqID) {
				return fail(c, http.StatusBadRequest, "invalid "+HeaderRequestID+" format")
			}
			reqAt, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return fail(c, http.StatusBadRequest, err.Error())
			}
			if !withinSkew(reqAt, nowUTC()) {
				return fail(c, http.StatusBadRequest, HeaderRequestAt+" too skewed")
			}
			partyID := strings.TrimSpace(req.Header.Get(HeaderPartyID))
			if partyID == "" {
				return fail(c, http.StatusBadRequest, "missing "+HeaderPartyID)
			}
			if !id.Valid(partyID) {
				return fail(c, http.StatusBadRequest, "invalid "+HeaderPartyID)
			}
			c.Set(PartyIDKey, partyID)

			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					return fail(c, http.StatusBadRequest, "unreadable body")
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			key := requestKey(req.Method, c.Path(), partyID, reqID)
			mark := entry{
				InProgress:  true,
				BodySHA256:  bodyHash(body),
				RequestID:   reqID,
				RequestAtMS: reqAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			ok, err := st.reserve(ctx, key, mark)
			if err != nil {
				cancel()
				log.Error("idempotency store unavailable", zap.String("key", key), zap.Error(err))
				return fail(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !ok {
				cur, err := st.load(ctx, key)
				cancel()
				if err != nil && !errors.Is(err, errNoEntry) {
					log.Warn("load idempotency entry", zap.String("key", key), zap.Error(err))
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != mark.BodySHA256 {
					return fail(c, http.StatusConflict, HeaderRequestID+" reused with different body")
				}
				if cur.replayable() {
					if len(cur.Body) == 0 {
						return c.NoContent(cur.Code)
					}
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				}
				return fail(c, http.StatusConflict, "request is already in progress")
			}
			cancel()

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be cancelled by now
			bg, done := context.WithTimeout(context.Background(), storeTimeout)
			defer done()
			if rec.code >= http.StatusInternalServerError {
				if err := st.release(bg, key); err != nil {
					log.Warn("release idempotency entry", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			final := mark
			final.InProgress = false
			final.Code = rec.code
			final.Body = rec.buf.Bytes()
			final.CreatedAt = nowUTC()
			if err := st.finish(bg, key, final, ttl); err != nil {
				log.Warn("save idempotency entry", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}
