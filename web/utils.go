package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/solar3s/gogumbi/gumbi"
)

// statusWriter allows to store current status code of ResponseWriter.
type statusWriter struct {
	http.ResponseWriter
	Status int
}

func (w *statusWriter) WriteHeader(statusCode int) {
	// set w.Status then forward to inner ResponseWriter
	w.Status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func NilHandler(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte{})
}

// Logger logs every request served by handler when verbose is set.
func Logger(handler http.Handler, name string, verbose bool) http.Handler {
	if !verbose {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		sw := &statusWriter{
			ResponseWriter: w,
			Status:         http.StatusOK, // some handlers never call WriteHeader
		}
		handler.ServeHTTP(sw, r)
		log.Printf("%s- %s %s> (%d) @%s: - agent:%s - %s",
			name, r.Method, r.RequestURI, sw.Status,
			r.RemoteAddr, r.Header.Get("User-Agent"), time.Since(t0))
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("error encoding json:", err)
	}
}

// boardError maps a board error to a http status code.
func boardError(w http.ResponseWriter, err error) {
	var (
		code = http.StatusInternalServerError
		perr *gumbi.ProtocolError
		pin  *gumbi.PinRangeError
		enc  *gumbi.EncodingError
		cerr *gumbi.ConnectionError
	)
	switch {
	case errors.As(err, &perr):
		code = http.StatusBadGateway
	case errors.As(err, &pin), errors.As(err, &enc), errors.Is(err, gumbi.ErrInvalidMode):
		code = http.StatusBadRequest
	case errors.Is(err, gumbi.ErrFaulted):
		code = http.StatusConflict
	case errors.Is(err, gumbi.ErrClosed), errors.As(err, &cerr):
		code = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), code)
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, os.ErrNotExist)
}
