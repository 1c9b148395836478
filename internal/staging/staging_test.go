package staging

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"sellerconsole/internal/catalog"
)

// testStore returns a staging store on Valkey DB 15.
// Skips the test if Valkey is unavailable.
func testStore(t *testing.T) *Store {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, prefix := range []string{draftPrefix, optionsPrefix, variantPrefix, previewPrefix} {
			keys, _ := client.Keys(ctx, prefix+"test-*").Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return New(client, time.Minute)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestDraftRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	d := catalog.NewDraft("d1")
	d.SetFields(catalog.FieldInput{Name: "Widget", Description: "A widget", Price: "12.50", Inventory: "3"})
	if _, err := d.AddAxis("Size", []string{"S", "M"}); err != nil {
		t.Fatal(err)
	}

	if err := s.SaveDraft(ctx, "test-seller", d); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	got, err := s.LoadDraft(ctx, "test-seller", "d1")
	if err != nil {
		t.Fatalf("LoadDraft: %v", err)
	}
	if got.Fields.Name != "Widget" {
		t.Errorf("name: got %q", got.Fields.Name)
	}
	if got.Fields.Price.Float() != 12.5 || !got.Fields.Price.Valid {
		t.Errorf("price: got %+v", got.Fields.Price)
	}
	if got.Variants.Len() != 1 || got.State != d.State {
		t.Errorf("variants/state: got %d/%s, want 1/%s", got.Variants.Len(), got.State, d.State)
	}

	if _, err := s.LoadDraft(ctx, "test-other", "d1"); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("other seller: got %v, want ErrDraftNotFound", err)
	}

	if err := s.DeleteDraft(ctx, "test-seller", "d1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadDraft(ctx, "test-seller", "d1"); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("after delete: got %v, want ErrDraftNotFound", err)
	}
}

func TestOptionsRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var c catalog.Composer
	if _, err := c.Add("Color", []string{"Red", "Blue"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveOptions(ctx, "test-seller", "p1", &c); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadOptions(ctx, "test-seller", "p1")
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	opts := got.SerializeOptions()
	if len(opts) != 1 || opts[0].OptionName != "Color" || len(opts[0].Values) != 2 {
		t.Errorf("options: got %+v", opts)
	}

	if err := s.DeleteOptions(ctx, "test-seller", "p1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadOptions(ctx, "test-seller", "p1"); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("after delete: got %v", err)
	}
}

func TestVariantFormRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	f := catalog.NewVariantForm("p1")
	f.SetFields(catalog.VariantInput{Name: "Red S", Price: "9.99", Stock: "4"})
	f.OptionValueIDs = []string{"v1"}

	if err := s.SaveVariantForm(ctx, "test-seller", "new-p1", f); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadVariantForm(ctx, "test-seller", "new-p1")
	if err != nil {
		t.Fatalf("LoadVariantForm: %v", err)
	}
	if got.ProductID != "p1" || got.Stock.Int() != 4 || len(got.OptionValueIDs) != 1 {
		t.Errorf("form: got %+v", got)
	}
	if err := s.DeleteVariantForm(ctx, "test-seller", "new-p1"); err != nil {
		t.Fatal(err)
	}
}

func TestPreviews(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	p := s.Previews("test-seller")

	staged, err := p.Put(ctx, catalog.File{Name: "a.png", ContentType: "image/png", Data: []byte("original")}, []byte("thumb"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if staged.ID == "" || staged.Size != 8 || staged.Name != "a.png" {
		t.Errorf("staged: got %+v", staged)
	}

	data, err := p.Read(ctx, staged.ID)
	if err != nil || string(data) != "original" {
		t.Errorf("Read: got %q, %v", data, err)
	}
	thumb, err := p.Thumb(ctx, staged.ID)
	if err != nil || string(thumb) != "thumb" {
		t.Errorf("Thumb: got %q, %v", thumb, err)
	}

	if _, err := s.Previews("test-intruder").Read(ctx, staged.ID); !errors.Is(err, ErrPreviewNotFound) {
		t.Errorf("other seller read: got %v, want ErrPreviewNotFound", err)
	}

	if err := p.Revoke(ctx, staged.ID, "unknown"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := p.Read(ctx, staged.ID); !errors.Is(err, ErrPreviewNotFound) {
		t.Errorf("after revoke: got %v, want ErrPreviewNotFound", err)
	}
	if err := p.Revoke(ctx); err != nil {
		t.Errorf("Revoke(): %v", err)
	}
}

func TestUploadStagedRevokesPreviews(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	p := s.Previews("test-seller")

	d := catalog.NewDraft("d2")
	staged, err := p.Put(ctx, catalog.File{Name: "a.png", ContentType: "image/png", Data: []byte("png")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	d.AddFiles([]catalog.StagedFile{staged})

	up := uploaderFunc(func(ctx context.Context, files []catalog.File) ([]string, error) {
		if len(files) != 1 || string(files[0].Data) != "png" {
			t.Errorf("uploaded files: got %+v", files)
		}
		return []string{"https://x/a.png"}, nil
	})
	if err := d.UploadStaged(ctx, p, up); err != nil {
		t.Fatalf("UploadStaged: %v", err)
	}
	if _, err := p.Read(ctx, staged.ID); !errors.Is(err, ErrPreviewNotFound) {
		t.Errorf("preview should be revoked, got %v", err)
	}
}

type uploaderFunc func(ctx context.Context, files []catalog.File) ([]string, error)

func (f uploaderFunc) UploadImages(ctx context.Context, files []catalog.File) ([]string, error) {
	return f(ctx, files)
}

func TestNewDefaultTTL(t *testing.T) {
	if s := New(nil, 0); s.ttl != DefaultTTL {
		t.Errorf("ttl: got %v, want %v", s.ttl, DefaultTTL)
	}
}
