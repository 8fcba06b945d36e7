package edgecache

import (
	"bytes"
	"net/http"
)

// recorder streams the downstream response to the client while teeing a
// copy of an eligible response into memory.  The decision is made once,
// when the status line is written: that is the last moment X-Cache can
// still be added.
type recorder struct {
	http.ResponseWriter

	wroteHeader bool
	status      int
	header      http.Header   // snapshot taken at WriteHeader
	body        *bytes.Buffer // nil unless the response is eligible
}

func newRecorder(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w}
}

func (rec *recorder) WriteHeader(code int) {
	if rec.wroteHeader {
		return
	}
	if code >= 100 && code < 200 {
		rec.ResponseWriter.WriteHeader(code)
		return
	}
	rec.wroteHeader = true
	rec.status = code

	h := rec.ResponseWriter.Header()
	if cacheable(code, h) {
		rec.header = h.Clone()
		rec.body = new(bytes.Buffer)
		h.Set("X-Cache", "MISS")
	} else {
		h.Set("X-Cache", "SKIP")
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(p []byte) (int, error) {
	if !rec.wroteHeader {
		rec.WriteHeader(http.StatusOK)
	}
	if rec.body != nil {
		rec.body.Write(p)
	}
	return rec.ResponseWriter.Write(p)
}

// Flush keeps streaming handlers working through the recorder.
func (rec *recorder) Flush() {
	if !rec.wroteHeader {
		rec.WriteHeader(http.StatusOK)
	}
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rec *recorder) Unwrap() http.ResponseWriter { return rec.ResponseWriter }

// captured reports whether a copy is available for the deferred store.
func (rec *recorder) captured() bool { return rec.body != nil }
