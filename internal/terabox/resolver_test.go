package terabox

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"teraview/internal/media"
)

// newEndpoint starts a fake resolution endpoint and counts calls to it.
func newEndpoint(t *testing.T, status int, body string) (*Resolver, *atomic.Int32, *atomic.Pointer[string]) {
	t.Helper()
	var calls atomic.Int32
	var gotURL atomic.Pointer[string]
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		u := r.URL.Query().Get("url")
		gotURL.Store(&u)
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q, want application/json", r.Header.Get("Accept"))
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewResolver(srv.URL+"/api.php", srv.Client(), nil), &calls, &gotURL
}

const validLink = media.Link("https://www.terabox.com/s/1AbCdEf?x=1&y=2")

func TestResolveDirectLink(t *testing.T) {
	r, calls, gotURL := newEndpoint(t, http.StatusOK, `{"directLink":"X","url":"Y"}`)

	direct, err := r.Resolve(context.Background(), validLink)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if direct.URL != "X" {
		t.Errorf("URL = %q, want X", direct.URL)
	}
	if direct.Field != media.FieldDirectLink {
		t.Errorf("Field = %v, want directLink", direct.Field)
	}
	if calls.Load() != 1 {
		t.Errorf("endpoint calls = %d, want 1", calls.Load())
	}
	if got := gotURL.Load(); got == nil || *got != string(validLink) {
		t.Errorf("endpoint saw url=%v, want %q", got, validLink)
	}
}

func TestResolveURLFallback(t *testing.T) {
	r, _, _ := newEndpoint(t, http.StatusOK, `{"url":"Y"}`)

	direct, err := r.Resolve(context.Background(), validLink)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if direct.URL != "Y" {
		t.Errorf("URL = %q, want Y", direct.URL)
	}
	if direct.Field != media.FieldURL {
		t.Errorf("Field = %v, want url", direct.Field)
	}
}

func TestResolveEmptyDirectLinkFallsBack(t *testing.T) {
	r, _, _ := newEndpoint(t, http.StatusOK, `{"directLink":"","url":"Y"}`)

	direct, err := r.Resolve(context.Background(), validLink)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if direct.URL != "Y" {
		t.Errorf("URL = %q, want Y", direct.URL)
	}
}

func TestResolveNoLink(t *testing.T) {
	for _, body := range []string{`{}`, `{"status":"ok"}`, `null`, `{"directLink":"","url":""}`} {
		t.Run(body, func(t *testing.T) {
			r, _, _ := newEndpoint(t, http.StatusOK, body)

			_, err := r.Resolve(context.Background(), validLink)
			if !errors.Is(err, ErrNoLink) {
				t.Errorf("Resolve() error = %v, want ErrNoLink", err)
			}
		})
	}
}

func TestResolveParseError(t *testing.T) {
	for _, body := range []string{`<html>oops</html>`, `[]`, `{"directLink":`, ``} {
		t.Run(body, func(t *testing.T) {
			r, _, _ := newEndpoint(t, http.StatusOK, body)

			_, err := r.Resolve(context.Background(), validLink)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Resolve() error = %v, want *ParseError", err)
			}
			if !errors.Is(err, ErrParse) {
				t.Error("ParseError should match ErrParse")
			}
		})
	}
}

func TestResolveRequestError(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError, http.StatusBadGateway} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			r, _, _ := newEndpoint(t, status, `{"directLink":"X"}`)

			direct, err := r.Resolve(context.Background(), validLink)
			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("Resolve() error = %v, want *RequestError", err)
			}
			if reqErr.Status != status {
				t.Errorf("Status = %d, want %d", reqErr.Status, status)
			}
			if !errors.Is(err, ErrRequest) {
				t.Error("RequestError should match ErrRequest")
			}
			if direct.URL != "" {
				t.Errorf("URL = %q, want empty on failure", direct.URL)
			}
		})
	}
}

func TestResolveInvalidInputMakesNoCall(t *testing.T) {
	for _, link := range []media.Link{"", "http://example.com/file", "terabox"} {
		t.Run(string(link), func(t *testing.T) {
			r, calls, _ := newEndpoint(t, http.StatusOK, `{"directLink":"X"}`)

			_, err := r.Resolve(context.Background(), link)
			var inputErr *InvalidInputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("Resolve() error = %v, want *InvalidInputError", err)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Error("InvalidInputError should match ErrInvalidInput")
			}
			if calls.Load() != 0 {
				t.Errorf("endpoint calls = %d, want 0", calls.Load())
			}
		})
	}
}

func TestResolveTransportError(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := srv.Client()
	endpoint := srv.URL
	srv.Close()

	r := NewResolver(endpoint, client, nil)
	_, err := r.Resolve(context.Background(), validLink)
	if err == nil {
		t.Fatal("expected error when endpoint is down")
	}
	if errors.Is(err, ErrRequest) {
		t.Error("transport failure should not be a RequestError")
	}
}

func TestNewResolverDefaults(t *testing.T) {
	r := NewResolver("", nil, nil)
	if r.Endpoint() != DefaultEndpoint {
		t.Errorf("Endpoint() = %q, want %q", r.Endpoint(), DefaultEndpoint)
	}
}

func TestLookupPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantURL   string
		wantField media.Field
		wantFound bool
	}{
		{"both", `{"directLink":"A","url":"B"}`, "A", media.FieldDirectLink, true},
		{"direct only", `{"directLink":"A"}`, "A", media.FieldDirectLink, true},
		{"url only", `{"url":"B"}`, "B", media.FieldURL, true},
		{"neither", `{"link":"C"}`, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, err := Lookup([]byte(tt.body))
			if err != nil {
				t.Fatalf("Lookup() error: %v", err)
			}
			got, ok := opt.Get()
			if ok != tt.wantFound {
				t.Fatalf("found = %v, want %v", ok, tt.wantFound)
			}
			if !ok {
				return
			}
			if got.URL != tt.wantURL || got.Field != tt.wantField {
				t.Errorf("Lookup() = %+v, want %q from %v", got, tt.wantURL, tt.wantField)
			}
		})
	}
}
