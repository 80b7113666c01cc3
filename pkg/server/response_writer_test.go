package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseWriterImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	n, err := rw.Write([]byte(`{"voltage":23.1}`))
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	if rw.Status() != http.StatusOK {
		t.Errorf("status = %d, want implicit 200", rw.Status())
	}
	if rw.BytesWritten() != n {
		t.Errorf("bytes = %d, want %d", rw.BytesWritten(), n)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("recorder code = %d, want 200", rec.Code)
	}
}

func TestResponseWriterIgnoresLateHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusServiceUnavailable)
	rw.WriteHeader(http.StatusOK) // dropped

	if rw.Status() != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want the first write to win", rw.Status())
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("recorder code = %d, want 503", rec.Code)
	}
}

func TestResponseWriterCountsBytes(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())

	total := 0
	for _, chunk := range []string{"alt=", "99.61", "\n"} {
		n, err := rw.Write([]byte(chunk))
		if err != nil {
			t.Fatalf("write %q: %v", chunk, err)
		}
		total += n
	}

	if rw.BytesWritten() != total {
		t.Errorf("bytes = %d, want %d", rw.BytesWritten(), total)
	}
}

func TestResponseWriterHijackUnsupported(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())

	if _, _, err := rw.Hijack(); err == nil {
		t.Fatal("expected hijack to fail on a plain recorder")
	}
}
