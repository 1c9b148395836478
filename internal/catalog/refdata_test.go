package catalog

import (
	"context"
	"errors"
	"testing"

	"sellerconsole/internal/models"
)

type fakeRefSource struct {
	cats    []models.Category
	subs    []models.SubCategory
	subsErr error
}

func (f *fakeRefSource) Categories(context.Context) ([]models.Category, error) {
	return f.cats, nil
}

func (f *fakeRefSource) SubCategories(context.Context) ([]models.SubCategory, error) {
	return f.subs, f.subsErr
}

func TestLoadRefData(t *testing.T) {
	src := &fakeRefSource{
		cats: []models.Category{{ID: "home", Name: "Home"}, {ID: "fashion", Name: "Fashion"}},
		subs: testSubs,
	}

	rd, err := LoadRefData(context.Background(), src)
	if err != nil {
		t.Fatalf("LoadRefData: %v", err)
	}
	if len(rd.Categories) != 2 || len(rd.SubCategories) != 3 {
		t.Errorf("snapshot: %d categories, %d sub-categories", len(rd.Categories), len(rd.SubCategories))
	}
	if c, ok := rd.Category("home"); !ok || c.Name != "Home" {
		t.Errorf("Category(home): got %+v, %v", c, ok)
	}
	if s, ok := rd.SubCategory("shirts"); !ok || s.CategoryID != "fashion" {
		t.Errorf("SubCategory(shirts): got %+v, %v", s, ok)
	}
	if got := rd.SubCategoriesOf("home"); len(got) != 2 {
		t.Errorf("SubCategoriesOf(home): got %d", len(got))
	}
}

func TestLoadRefDataError(t *testing.T) {
	boom := errors.New("boom")
	_, err := LoadRefData(context.Background(), &fakeRefSource{subsErr: boom})
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped boom", err)
	}
}

func TestFilterSubCategories(t *testing.T) {
	tests := []struct {
		category string
		want     []string
	}{
		{"home", []string{"kitchen", "garden"}},
		{"fashion", []string{"shirts"}},
		{"toys", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got := FilterSubCategories(testSubs, tt.category)
			if got == nil {
				t.Fatal("result must not be nil")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d, want %d", len(got), len(tt.want))
			}
			for i, s := range got {
				if s.ID != tt.want[i] || s.CategoryID != tt.category {
					t.Errorf("[%d]: got %+v", i, s)
				}
			}
		})
	}
}

func TestFilterProducts(t *testing.T) {
	products := []models.Product{{Name: "Red Mug"}, {Name: "Blue mug"}, {Name: "Plate"}}

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"MUG", 2},
		{"  plate ", 1},
		{"fork", 0},
	}
	for _, tt := range tests {
		if got := FilterProducts(products, tt.query); len(got) != tt.want {
			t.Errorf("FilterProducts(%q): got %d, want %d", tt.query, len(got), tt.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw         string
		valid       bool
		nonNegative bool
		whole       bool
	}{
		{"12", true, true, true},
		{" 12.50 ", true, true, false},
		{"0", true, true, true},
		{"-3", true, false, true},
		{"abc", false, false, false},
		{"", false, false, false},
	}
	for _, tt := range tests {
		n := ParseNumber(tt.raw)
		if n.Valid != tt.valid || n.NonNegative() != tt.nonNegative || n.Whole() != tt.whole {
			t.Errorf("ParseNumber(%q): valid=%v nonNegative=%v whole=%v", tt.raw, n.Valid, n.NonNegative(), n.Whole())
		}
		if n.Raw != tt.raw {
			t.Errorf("Raw: got %q, want %q", n.Raw, tt.raw)
		}
	}
}
