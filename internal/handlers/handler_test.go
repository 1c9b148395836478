// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests: a Valkey connection on DB 15 and an in-process fake of
// the marketplace backend. Tests are skipped when Valkey is unavailable.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"sellerconsole/internal/backend"
	"sellerconsole/internal/cache"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/models"
	"sellerconsole/internal/render"
	"sellerconsole/internal/session"
	"sellerconsole/internal/staging"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "draft:*", "options:*", "variantform:*", "preview:*", "refdata:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})
	return client
}

// apiCall is one request the fake backend received.
type apiCall struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
}

// fakeBackend serves the marketplace endpoints the console uses from
// in-memory fixtures.
type fakeBackend struct {
	mu            sync.Mutex
	products      []models.Product
	categories    []models.Category
	subCategories []models.SubCategory
	orders        []models.Order
	videos        []models.Video
	options       map[string][]models.VariantOption
	variants      map[string][]models.Variant
	analytics     *models.Analytics
	seller        models.Seller
	brand         *models.Brand
	fail          map[string]int // "METHOD /path" -> status
	calls         []apiCall
	uploads       int
}

func newFakeBackend() *fakeBackend {
	cat := "cat-1"
	sub := "sub-1"
	return &fakeBackend{
		products: []models.Product{
			{ID: "p1", Name: "Linen Shirt", Description: "Breathable", BasePrice: 39.5, Price: 39.5,
				CategoryID: &cat, SubCategoryID: &sub, Images: []string{"https://cdn.test/p1.png"},
				Inventory: []models.Stock{{Quantity: 12}}},
			{ID: "p2", Name: "Wool Scarf", Description: "Warm", BasePrice: 25, Price: 25,
				Inventory: []models.Stock{{Quantity: 3}}},
		},
		categories: []models.Category{{ID: "cat-1", Name: "Clothing"}, {ID: "cat-2", Name: "Home"}},
		subCategories: []models.SubCategory{
			{ID: "sub-1", Name: "Shirts", CategoryID: "cat-1", ImageURL: "https://cdn.test/shirts.png"},
			{ID: "sub-2", Name: "Lamps", CategoryID: "cat-2", ImageURL: "https://cdn.test/lamps.png"},
		},
		orders: []models.Order{
			{ID: "order-aaaaaaaa-1", Email: "grace@example.com", Status: models.OrderPending, TotalAmount: 39.5,
				CreatedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "order-bbbbbbbb-2", Email: "alan@example.com", Status: models.OrderShipped, TotalAmount: 25,
				CreatedAt: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)},
		},
		videos:   []models.Video{{ID: "v1", ProductID: "p1", Size: "1080x1920", Caption: "Summer", VideoURL: "https://cdn.test/v1.mp4"}},
		options:  map[string][]models.VariantOption{},
		variants: map[string][]models.Variant{},
		analytics: &models.Analytics{
			TotalRevenue: models.Metric{Amount: 1200, Change: 12.5},
			MonthlyData:  []models.MonthlyTotal{{Month: "Jan", Total: 400}, {Month: "Feb", Total: 800}},
		},
		seller: models.Seller{ID: "seller-1", Name: "Ada Lovelace", Email: "ada@example.com", IsCompleted: true},
		brand:  &models.Brand{ID: "brand-1", Name: "Analytical Goods", Location: "London"},
		fail:   map[string]int{},
	}
}

// failWith makes the next requests to method+path answer with status.
func (f *fakeBackend) failWith(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method+" "+path] = status
}

// called returns the requests received for method+path.
func (f *fakeBackend) called(method, path string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeBackend) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			body, _ := io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewReader(body))

			f.mu.Lock()
			f.calls = append(f.calls, apiCall{Method: req.Method, Path: req.URL.Path, Auth: req.Header.Get("Authorization"), Body: body})
			status, failing := f.fail[req.Method+" "+req.URL.Path]
			f.mu.Unlock()

			if failing {
				w.WriteHeader(status)
				json.NewEncoder(w).Encode(map[string]string{"message": "fake failure"})
				return
			}
			next.ServeHTTP(w, req)
		})
	})

	reply := func(v func() any) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			f.mu.Lock()
			out := v()
			f.mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(out)
		}
	}
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
	upload := func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var out []map[string]string
		f.mu.Lock()
		for range req.MultipartForm.File["files"] {
			f.uploads++
			out = append(out, map[string]string{"url": "https://cdn.test/upload-" + strconv.Itoa(f.uploads) + ".png"})
		}
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"data": out})
	}

	r.Get("/product/get-seller-products", reply(func() any { return map[string]any{"products": f.products} }))
	r.Post("/product/create", ok)
	r.Patch("/product/update/{id}", ok)
	r.Delete("/product/delete/{id}", ok)
	r.Post("/product/upload/images", upload)
	r.Get("/product/option/{id}", func(w http.ResponseWriter, req *http.Request) {
		reply(func() any { return map[string]any{"options": f.options[chi.URLParam(req, "id")]} })(w, req)
	})
	r.Post("/product/add/variant-options", ok)
	r.Patch("/product/add/variant-options", ok)
	r.Get("/product/variants/{id}", func(w http.ResponseWriter, req *http.Request) {
		reply(func() any { return map[string]any{"variants": f.variants[chi.URLParam(req, "id")]} })(w, req)
	})
	r.Post("/product/create/variant/{id}", ok)
	r.Patch("/product/update/variant/{id}", ok)

	r.Get("/category/get", reply(func() any { return map[string]any{"categories": f.categories} }))
	r.Get("/category/get/sub-categories", reply(func() any { return map[string]any{"subCategories": f.subCategories} }))
	r.Post("/category/create/sub-category", ok)
	r.Patch("/category/update/sub-category", ok)
	r.Delete("/category/delete/sub-category", ok)
	r.Post("/category/upload/image", upload)

	r.Get("/order/seller/get-orders", reply(func() any { return map[string]any{"orders": f.orders} }))
	r.Get("/reels/get-seller-reels", reply(func() any { return map[string]any{"reels": f.videos} }))
	r.Post("/reels/create", ok)
	r.Patch("/reels/update/{id}", ok)
	r.Post("/reels/upload/images", upload)

	r.Get("/seller/profile/get-details", reply(func() any { return map[string]any{"seller": f.seller} }))
	r.Get("/brand/get-my-brand", reply(func() any { return map[string]any{"brand": f.brand} }))
	r.Get("/analytics/seller", reply(func() any { return f.analytics }))
	r.Get("/seller/2fa/generate", reply(func() any {
		return map[string]any{"qrCodeUrl": "otpauth://totp/BuyBox:ada@example.com?secret=JBSWY3DPEHPK3PXP&issuer=BuyBox"}
	}))
	r.Post("/seller/2fa/verify", ok)
	r.Patch("/auth/seller/update-profile", func(w http.ResponseWriter, req *http.Request) {
		var in backend.ProfileInput
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.seller.Username, f.seller.Email, f.seller.Name, f.seller.ProfilePic = in.Username, in.Email, in.Name, in.ProfilePic
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/seller/auth/login", reply(func() any { return map[string]any{"accessToken": "token-login", "user": f.seller} }))
	r.Post("/seller/auth/register", reply(func() any { return map[string]any{"activationToken": "activation-1"} }))
	r.Post("/seller/auth/verify", func(w http.ResponseWriter, req *http.Request) {
		var in map[string]string
		json.NewDecoder(req.Body).Decode(&in)
		if in["activationCode"] != "4242" || in["activationToken"] != "activation-1" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "Wrong activation code"})
			return
		}
		reply(func() any { return map[string]any{"accessToken": "token-verified", "user": f.seller} })(w, req)
	})
	r.Get("/seller/auth/profile", reply(func() any { return map[string]any{"user": f.seller} }))
	r.Post("/brand/create", func(w http.ResponseWriter, req *http.Request) {
		var in models.Brand
		json.NewDecoder(req.Body).Decode(&in)
		in.ID = "brand-2"
		f.mu.Lock()
		f.brand = &in
		f.mu.Unlock()
		reply(func() any { return map[string]any{"newBrand": in} })(w, req)
	})
	return r
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	Valkey   *redis.Client
	Renderer *render.Renderer
	Sessions *session.Store
	Staging  *staging.Store
	Refs     *cache.RefCache
	Backend  *fakeBackend
	Console  *Console
	Auth     *Auth
	Session  *session.Data
	Cookie   *http.Cookie // sent with every request when set
}

// newTestEnv creates a complete test environment with a signed-in,
// onboarded seller.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	vk := testValkeyClient(t)

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	sealer, err := session.NewSealer("handler-test-secret-0123456789abcdef")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	sessions := session.NewStore(vk, false, sealer)

	fake := newFakeBackend()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	api := backend.New(srv.URL, 5*time.Second)
	stage := staging.New(vk, time.Hour)
	refs := cache.NewRefCache(vk, 0)

	sess := &session.Data{
		SellerID:          "seller-1",
		Email:             "ada@example.com",
		Name:              "Ada Lovelace",
		BrandID:           "brand-1",
		BrandName:         "Analytical Goods",
		ProfileComplete:   true,
		AgreementAccepted: true,
		TwoFADone:         true,
	}
	if err := sessions.SetToken(sess, "token-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	return &testEnv{
		Valkey:   vk,
		Renderer: renderer,
		Sessions: sessions,
		Staging:  stage,
		Refs:     refs,
		Backend:  fake,
		Console:  NewConsole(renderer, sessions, api, stage, refs, nil, nil),
		Auth:     NewAuth(renderer, sessions, api),
		Session:  sess,
	}
}

// serve routes one request through a router holding only pattern, with
// the test session in the context. body may be nil, url.Values or a
// *multipartBody.
func (e *testEnv) serve(t *testing.T, method, pattern, target string, body any, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.SessionKey, e.Session)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.MethodFunc(method, pattern, h)

	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case url.Values:
		reader = strings.NewReader(b.Encode())
		contentType = "application/x-www-form-urlencoded"
	case *multipartBody:
		reader = &b.buf
		contentType = b.contentType
	}

	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if e.Cookie != nil {
		req.AddCookie(e.Cookie)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// persistSession stores the test session in Valkey and sends its cookie
// with later requests, for handlers that update the session.
func (e *testEnv) persistSession(t *testing.T) {
	t.Helper()
	rec := httptest.NewRecorder()
	if _, err := e.Sessions.Create(context.Background(), rec, e.Session); err != nil {
		t.Fatalf("Sessions.Create: %v", err)
	}
	e.Cookie = sessionCookie(t, rec)
}

// sessionCookie returns the session cookie set on a response.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

// storedSession loads the session a cookie points at.
func (e *testEnv) storedSession(t *testing.T, c *http.Cookie) *session.Data {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	data, err := e.Sessions.Get(context.Background(), req)
	if err != nil || data == nil {
		t.Fatalf("Sessions.Get: %v, %v", data, err)
	}
	return data
}

// multipartBody builds a multipart/form-data request body.
type multipartBody struct {
	buf         bytes.Buffer
	contentType string
}

func newMultipart(t *testing.T, fields map[string]string, files map[string][]namedFile) *multipartBody {
	t.Helper()
	b := &multipartBody{}
	mw := multipart.NewWriter(&b.buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	for field, list := range files {
		for _, f := range list {
			part, err := mw.CreateFormFile(field, f.Name)
			if err != nil {
				t.Fatalf("CreateFormFile: %v", err)
			}
			part.Write(f.Data)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close: %v", err)
	}
	b.contentType = mw.FormDataContentType()
	return b
}

type namedFile struct {
	Name string
	Data []byte
}

// pngFile returns a small valid PNG.
func pngFile(t *testing.T, name string) namedFile {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: 120, B: uint8(y * 5), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return namedFile{Name: name, Data: buf.Bytes()}
}

// assertRedirect checks a 303 to want.
func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d; body: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("Location: got %q, want %q", got, want)
	}
}

// assertBody checks a 200 response containing every want.
func assertBody(t *testing.T, rec *httptest.ResponseRecorder, want ...string) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := rec.Body.String()
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("body should contain %q", w)
		}
	}
}
