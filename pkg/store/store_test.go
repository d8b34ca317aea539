package store

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/forestplot/pkg/errors"
	"github.com/matzehuels/forestplot/pkg/forest"
)

func testSpec(t *testing.T, title string) *forest.Spec {
	t.Helper()
	spec, err := forest.Parse([]byte(`{
		"labels": {"title": "` + title + `"},
		"data": {
			"rows": [
				{"id": "a", "label": "Trial A", "point": 1.2, "lower": 0.9, "upper": 1.6},
				{"id": "b", "label": "Trial B", "point": 0.8, "lower": 0.6, "upper": 1.1}
			]
		}
	}`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return spec
}

func runStoreTests(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		spec := testSpec(t, "Mortality")
		if err := s.Put(ctx, "plot-1", spec); err != nil {
			t.Fatalf("Put error: %v", err)
		}

		got, err := s.Get(ctx, "plot-1")
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if got.Labels.Title != "Mortality" {
			t.Errorf("Title = %q, want Mortality", got.Labels.Title)
		}
		if len(got.Data.Rows) != 2 {
			t.Errorf("Rows = %d, want 2", len(got.Data.Rows))
		}
		if got.Data.Rows[0].Point == nil || *got.Data.Rows[0].Point != 1.2 {
			t.Error("row values should survive the round trip")
		}

		// The returned spec is a copy
		got.Labels.Title = "mutated"
		again, err := s.Get(ctx, "plot-1")
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if again.Labels.Title != "Mortality" {
			t.Error("mutating a returned spec should not affect the store")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := s.Get(ctx, "absent")
		if err == nil {
			t.Fatal("Get of unknown id should fail")
		}
		if !errors.Is(err, errors.ErrCodePlotNotFound) {
			t.Errorf("Expected PLOT_NOT_FOUND, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := s.Put(ctx, "plot-2", testSpec(t, "Short-lived")); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, "plot-2"); err != nil {
			t.Fatalf("Delete error: %v", err)
		}
		if _, err := s.Get(ctx, "plot-2"); !errors.Is(err, errors.ErrCodePlotNotFound) {
			t.Errorf("Deleted plot should be gone, got %v", err)
		}

		// Deleting again is not an error
		if err := s.Delete(ctx, "plot-2"); err != nil {
			t.Errorf("Second delete should be a no-op: %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		if err := s.Put(ctx, "plot-3", testSpec(t, "Later")); err != nil {
			t.Fatal(err)
		}

		infos, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List error: %v", err)
		}
		if len(infos) != 2 {
			t.Fatalf("List = %d entries, want 2", len(infos))
		}
		// Newest first
		if infos[0].ID != "plot-3" {
			t.Errorf("First entry = %s, want plot-3", infos[0].ID)
		}
		if infos[0].Title != "Later" || infos[0].Rows != 2 {
			t.Errorf("Info = %+v, want Title=Later Rows=2", infos[0])
		}
		if infos[0].CreatedAt.IsZero() || infos[0].UpdatedAt.IsZero() {
			t.Error("timestamps should be set")
		}
	})

	t.Run("InvalidID", func(t *testing.T) {
		for _, id := range []string{"", "a/b", `a\b`, "../escape"} {
			if err := s.Put(ctx, id, testSpec(t, "x")); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Put(%q) = %v, want INVALID_INPUT", id, err)
			}
			if _, err := s.Get(ctx, id); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Get(%q) = %v, want INVALID_INPUT", id, err)
			}
		}
	})
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	runStoreTests(t, s)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	runStoreTests(t, s)
}

func TestFileStorePreservesCreatedAt(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Put(ctx, "p", testSpec(t, "v1")); err != nil {
		t.Fatal(err)
	}
	first, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(10 * time.Millisecond)
	if err := s.Put(ctx, "p", testSpec(t, "v2")); err != nil {
		t.Fatal(err)
	}
	second, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if !second[0].CreatedAt.Equal(first[0].CreatedAt) {
		t.Error("overwrite should preserve created_at")
	}
	if !second[0].UpdatedAt.After(first[0].UpdatedAt) {
		t.Error("overwrite should advance updated_at")
	}
	if second[0].Title != "v2" {
		t.Errorf("Title = %q, want v2", second[0].Title)
	}
}

func TestSpecBSONRoundTrip(t *testing.T) {
	spec, err := forest.Parse([]byte(`{
		"data": {
			"rows": [
				{"id": "a", "label": "Trial A", "point": 1.2, "lower": 0.9, "upper": 1.6,
				 "meta": {"n": 120, "weight": "12.5%"}}
			],
			"groups": [{"id": "g1", "label": "Subgroup"}]
		},
		"columns": [
			{"field": "label", "header": "Study"},
			{"field": "n", "header": "N", "type": "numeric", "options": {"decimals": 0}}
		]
	}`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	doc, err := specToBSON(spec)
	if err != nil {
		t.Fatalf("specToBSON error: %v", err)
	}
	got, err := specFromBSON(doc)
	if err != nil {
		t.Fatalf("specFromBSON error: %v", err)
	}

	if len(got.Data.Rows) != 1 || len(got.Data.Groups) != 1 {
		t.Fatalf("rows/groups = %d/%d, want 1/1", len(got.Data.Rows), len(got.Data.Groups))
	}
	if *got.Data.Rows[0].Point != 1.2 {
		t.Errorf("Point = %v, want 1.2", *got.Data.Rows[0].Point)
	}
	if forest.MetaFloat(got.Data.Rows[0].Meta, "n") != 120 {
		t.Error("metadata numbers should survive the round trip")
	}
	if len(got.Columns) != 2 {
		t.Fatalf("columns = %d, want 2", len(got.Columns))
	}
	// Typed column options survive because the round trip re-parses the
	// canonical encoding rather than the struct.
	if _, ok := got.Columns[1].EffectiveOptions().(forest.NumericOptions); !ok {
		t.Errorf("column options = %T, want NumericOptions", got.Columns[1].EffectiveOptions())
	}
}
