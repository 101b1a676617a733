package api

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/fatih/color"
)

var (
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	errColor    = color.New(color.FgRed)
	methodColor = color.New(color.FgCyan, color.Bold)
)

// RequestLogger prints one colored line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		statusColor(wrapped.statusCode).Printf("[%s] %s %s - %d - %v\n",
			start.Format("15:04:05"),
			methodColor.Sprint(r.Method),
			r.URL.Path,
			wrapped.statusCode,
			time.Since(start).Round(time.Microsecond),
		)
	})
}

func statusColor(code int) *color.Color {
	switch {
	case code >= http.StatusInternalServerError:
		return errColor
	case code >= http.StatusBadRequest:
		return warnColor
	default:
		return okColor
	}
}

// responseWriter captures the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}
