package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client connected to the test Valkey.
// Skips the test if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests to isolate from dev data.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testStore(t *testing.T, secure bool) *Store {
	t.Helper()
	sealer, err := NewSealer("test-secret-with-enough-entropy-0123456789")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	return NewStore(testValkeyClient(t), secure, sealer)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("expected session cookie to be set")
	return nil
}

func TestSessionCreateAndGet(t *testing.T) {
	store := testStore(t, false)
	ctx := context.Background()
	w := httptest.NewRecorder()

	data := &Data{SellerID: "s1", Email: "ana@shop.test", Name: "Ana", BrandID: "b1"}
	if err := store.SetToken(data, "backend-jwt", time.Time{}); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	sessionID, err := store.Create(ctx, w, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sessionID == "" {
		t.Error("expected non-empty session ID")
	}

	cookie := sessionCookie(t, w)
	if !cookie.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}
	if cookie.Secure {
		t.Error("expected Secure=false for non-secure store")
	}
	if cookie.Value == "backend-jwt" || data.SealedToken == "backend-jwt" {
		t.Error("backend token must never be stored in clear")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)

	got, err := store.Get(ctx, req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected session data, got nil")
	}
	if got.Email != "ana@shop.test" || got.SellerID != "s1" {
		t.Errorf("identity: got %q/%q", got.SellerID, got.Email)
	}
	if !got.Authenticated() {
		t.Error("expected authenticated session")
	}

	token, err := store.Token(got)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "backend-jwt" {
		t.Errorf("token: got %q, want %q", token, "backend-jwt")
	}
}

func TestSessionTTLBoundByToken(t *testing.T) {
	store := testStore(t, false)
	w := httptest.NewRecorder()

	data := &Data{SellerID: "s1"}
	if err := store.SetToken(data, "t", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(context.Background(), w, data); err != nil {
		t.Fatal(err)
	}

	cookie := sessionCookie(t, w)
	if cookie.MaxAge > int((10 * time.Minute).Seconds()) {
		t.Errorf("MaxAge: got %d, want <= 600", cookie.MaxAge)
	}
}

func TestSessionGetNoCookie(t *testing.T) {
	store := testStore(t, false)

	req := httptest.NewRequest("GET", "/", nil)
	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get (no cookie): %v", err)
	}
	if data != nil {
		t.Error("expected nil for request without session cookie")
	}
}

func TestSessionGetExpired(t *testing.T) {
	store := testStore(t, false)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "nonexistent-session-id"})

	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get (expired): %v", err)
	}
	if data != nil {
		t.Error("expected nil for expired/nonexistent session")
	}
}

func TestSessionUpdate(t *testing.T) {
	store := testStore(t, false)
	ctx := context.Background()
	w := httptest.NewRecorder()

	data := &Data{SellerID: "s1", Email: "update@shop.test", TwoFAEnabled: true}
	if _, err := store.Create(ctx, w, data); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(sessionCookie(t, w))

	data.TwoFADone = true
	if err := store.Update(ctx, req, data); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := store.Get(ctx, req)
	if got == nil {
		t.Fatal("expected session after update")
	}
	if !got.TwoFADone {
		t.Error("expected TwoFADone=true after update")
	}
}

func TestSessionUpdateNoCookie(t *testing.T) {
	store := testStore(t, false)

	req := httptest.NewRequest("GET", "/", nil)
	if err := store.Update(context.Background(), req, &Data{}); err == nil {
		t.Error("expected error when updating without cookie")
	}
}

func TestSessionDestroy(t *testing.T) {
	store := testStore(t, false)
	ctx := context.Background()
	w := httptest.NewRecorder()

	if _, err := store.Create(ctx, w, &Data{SellerID: "s1"}); err != nil {
		t.Fatal(err)
	}

	w2 := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(sessionCookie(t, w))

	if err := store.Destroy(ctx, w2, req); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	for _, c := range w2.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge != -1 {
			t.Error("expected MaxAge=-1 on destroyed cookie")
		}
	}

	got, _ := store.Get(ctx, req)
	if got != nil {
		t.Error("expected nil after destroy")
	}
}

func TestSessionDestroyNoCookie(t *testing.T) {
	store := testStore(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	if err := store.Destroy(context.Background(), w, req); err != nil {
		t.Errorf("Destroy (no cookie): %v", err)
	}
}

func TestSessionSecureCookie(t *testing.T) {
	store := testStore(t, true)

	w := httptest.NewRecorder()
	if _, err := store.Create(context.Background(), w, &Data{SellerID: "s1"}); err != nil {
		t.Fatal(err)
	}
	if !sessionCookie(t, w).Secure {
		t.Error("expected Secure=true for secure store")
	}
}
