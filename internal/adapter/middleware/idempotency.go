package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"

	// pending entries outlive a stuck handler by at most this long
	provisionalLockTTL = 60 * time.Second
	maxClockSkew       = 10 * time.Minute
	storeTimeout       = 2 * time.Second
)

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	if r.buf != nil {
		r.buf.Write(b)
	}
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }
func (r *respRecorder) Unwrap() http.ResponseWriter { return r.w }

func errJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// IdempotencyMiddleware records the outcome of mutating requests that carry
// Ax-Request-Id, keyed by method + path + request id. A retry with the same
// body replays the stored response; requests without the header pass through.
// Ax-Request-At must be epoch seconds or milliseconds, or RFC 3339 with a zone.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	store := entryStore{rdb: rdb, ttl: ttl}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			stamp, tracked, err := readStamp(req.Header, time.Now().UTC())
			if !tracked {
				return next(c)
			}
			if err != nil {
				return errJSON(c, http.StatusBadRequest, err.Error())
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			sum := bodySum(body)

			key := stamp.key(req.Method, req.URL.Path)
			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			pending := pendingEntry(stamp, sum)
			claimed, err := store.claim(ctx, key, pending)
			if err != nil {
				log.Warn("idempotency store unavailable", zap.String("key", key), zap.Error(err))
				return errJSON(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !claimed {
				cur, err := store.load(ctx, key)
				if err != nil {
					log.Warn("idempotency entry not loaded", zap.String("key", key), zap.Error(err))
				}
				return replay(c, cur, sum)
			}

			orig := c.Response().Writer
			rec := &respRecorder{w: orig, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}
			c.Response().Writer = orig

			// server errors are not final: free the key so the client can retry
			if rec.code >= http.StatusInternalServerError {
				if err := store.release(context.Background(), key); err != nil {
					log.Warn("idempotency release failed", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			if err := store.finish(context.Background(), key, pending.done(rec.code, rec.buf.Bytes())); err != nil {
				log.Warn("idempotency save failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}

// replay answers a request whose key is already taken.
func replay(c echo.Context, cur replayEntry, sum string) error {
	if cur.BodySHA256 != "" && cur.BodySHA256 != sum {
		return errJSON(c, http.StatusConflict, "Ax-Request-Id reused with different body")
	}
	if !cur.replayable() {
		return errJSON(c, http.StatusConflict, "request is already in progress")
	}
	c.Response().Header().Set("Idempotent-Replayed", "true")
	if len(cur.Body) == 0 {
		return c.NoContent(cur.Code)
	}
	return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
}
