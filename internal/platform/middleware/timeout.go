package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout returns middleware that sets a context deadline on each
// incoming request. The handler writes into a private buffer that is only
// copied to the client when it finishes in time; on deadline the middleware
// answers 504 itself and the late handler keeps writing into the buffer,
// which is thrown away. A timed-out handler can never touch the connection.
//
// Availability queries rely on this to fail closed: a timed-out lookup reports
// "availability unknown" rather than an empty (fully booked looking) day.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			buf := newBufferedWriter()
			client := c.Response().Writer
			c.Response().Writer = buf

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				c.Response().Writer = client
				buf.copyTo(client)
				return err
			case <-ctx.Done():
				// The handler goroutine still owns buf; answer on the real
				// connection and never read the buffer again.
				if ctx.Err() == context.DeadlineExceeded {
					client.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
					client.WriteHeader(http.StatusGatewayTimeout)
					client.Write([]byte(`{"message":"request timed out"}`))
				}
				return nil
			}
		}
	}
}

// bufferedWriter captures a handler's response without touching the client.
type bufferedWriter struct {
	header      http.Header
	code        int
	wroteHeader bool
	body        bytes.Buffer
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: make(http.Header), code: http.StatusOK}
}

func (w *bufferedWriter) Header() http.Header { return w.header }

func (w *bufferedWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.code = code
		w.wroteHeader = true
	}
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	return w.body.Write(p)
}

func (w *bufferedWriter) copyTo(dst http.ResponseWriter) {
	for k, vals := range w.header {
		for _, v := range vals {
			dst.Header().Add(k, v)
		}
	}
	dst.WriteHeader(w.code)
	dst.Write(w.body.Bytes())
}
