package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// csrfToken runs a GET through the middleware and returns the issued token.
func csrfToken(t *testing.T) string {
	t.Helper()
	var token string
	h := NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = CSRFTokenFromCtx(r.Context())
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sign-in", nil))

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CSRFCookieName {
		t.Fatalf("expected one %s cookie, got %v", CSRFCookieName, cookies)
	}
	if cookies[0].Value != token {
		t.Fatalf("context token %q differs from cookie %q", token, cookies[0].Value)
	}
	if len(token) != csrfTokenLength*2 {
		t.Fatalf("token length: got %d, want %d", len(token), csrfTokenLength*2)
	}
	return token
}

func TestCSRF_IssuesToken(t *testing.T) {
	csrfToken(t)
}

func TestCSRF_ReusesCookie(t *testing.T) {
	token := csrfToken(t)

	var seen string
	h := NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CSRFTokenFromCtx(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: token})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen != token {
		t.Errorf("token: got %q, want %q", seen, token)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("should not reissue a valid cookie")
	}
}

func TestCSRF_Validation(t *testing.T) {
	token := csrfToken(t)

	tests := []struct {
		name       string
		cookie     string
		header     string
		form       string
		wantStatus int
	}{
		{"header matches", token, token, "", http.StatusOK},
		{"form field matches", token, "", token, http.StatusOK},
		{"missing token", token, "", "", http.StatusForbidden},
		{"wrong token", token, strings.Repeat("0", 64), "", http.StatusForbidden},
		{"no cookie", "", token, "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := okHandler()
			h := NewCSRF(false)(next)

			body := url.Values{}
			if tt.form != "" {
				body.Set(CSRFFormField, tt.form)
			}
			req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestCSRFTokenFromCtx_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := CSRFTokenFromCtx(req.Context()); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
