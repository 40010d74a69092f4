package httpapi

import (
	"bufio"
	"errors"
	"log"
	"net"
	"net/http"
	"time"
)

// responseTrace wraps the writer so the access log can report what was sent.
type responseTrace struct {
	http.ResponseWriter
	status  int
	written int
}

func (t *responseTrace) WriteHeader(code int) {
	if t.status == 0 {
		t.status = code
	}
	t.ResponseWriter.WriteHeader(code)
}

func (t *responseTrace) Write(p []byte) (int, error) {
	if t.status == 0 {
		t.status = http.StatusOK
	}
	n, err := t.ResponseWriter.Write(p)
	t.written += n
	return n, err
}

// Hijack passes through so the traffic websocket can take over the
// connection from behind the logger.
func (t *responseTrace) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := t.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// RequestLogger emits one access-log line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trace := &responseTrace{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(trace, r)
		status := trace.status
		if status == 0 {
			status = http.StatusOK
		}
		log.Printf("http %s %s status=%d bytes=%d took=%s",
			r.Method, r.URL.Path, status, trace.written, time.Since(start).Round(time.Microsecond))
	})
}
