package middleware

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"net/http"
)

// responseWriter запоминает код ответа. Поддерживает http.Hijacker для WebSocket.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool

	// body копия тела ответа, если capture включен
	body    *bytes.Buffer
	capture bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(status int) {
	if rw.wroteHeader {
		return
	}
	rw.status = status
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	if rw.capture {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

// Hijack отдает соединение gorilla/websocket
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	rw.wroteHeader = true
	rw.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Flush implements http.Flusher
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
