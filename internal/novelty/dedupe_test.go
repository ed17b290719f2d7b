package novelty

import (
	"context"
	"errors"
	"testing"

	"NewsPolarity/internal/domain"
)

func articles(titles ...string) []domain.RawArticle {
	out := make([]domain.RawArticle, len(titles))
	for i, title := range titles {
		out[i] = domain.RawArticle{Title: title, URL: "https://example.org/" + title + "/" + string(rune('0'+i))}
	}
	return out
}

func staticLookup(known ...string) TitleLookup {
	return func(_ context.Context, titles []string) (map[string]bool, error) {
		set := map[string]bool{}
		for _, k := range known {
			set[k] = true
		}
		out := map[string]bool{}
		for _, title := range titles {
			if set[title] {
				out[title] = true
			}
		}
		return out, nil
	}
}

func TestDedupeDropsRepeatsAndKnown(t *testing.T) {
	t.Parallel()

	got, err := Dedupe(context.Background(), articles("A", "A", "B"), staticLookup("B"))
	if err != nil {
		t.Fatalf("Dedupe error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "A" {
		t.Fatalf("got %+v, want single article A", got)
	}
	if got[0].URL != "https://example.org/A/0" {
		t.Fatalf("first occurrence not kept: %s", got[0].URL)
	}
}

func TestDedupeEmptySkipsLookup(t *testing.T) {
	t.Parallel()

	called := false
	lookup := func(context.Context, []string) (map[string]bool, error) {
		called = true
		return nil, nil
	}

	got, err := Dedupe(context.Background(), nil, lookup)
	if err != nil {
		t.Fatalf("Dedupe error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
	if called {
		t.Fatal("lookup must not run for an empty batch")
	}
}

func TestDedupeLookupError(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	_, err := Dedupe(context.Background(), articles("A"), func(context.Context, []string) (map[string]bool, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
}

func TestDedupeNeverReturnsDuplicatesOrKnown(t *testing.T) {
	t.Parallel()

	input := articles("x", "y", "x", "z", "y", "w", "z")
	known := []string{"w", "q"}

	got, err := Dedupe(context.Background(), input, staticLookup(known...))
	if err != nil {
		t.Fatalf("Dedupe error: %v", err)
	}

	seen := map[string]bool{}
	for _, a := range got {
		if seen[a.Title] {
			t.Fatalf("duplicate title %q", a.Title)
		}
		seen[a.Title] = true
		for _, k := range known {
			if a.Title == k {
				t.Fatalf("known title %q returned", k)
			}
		}
	}

	want := []string{"x", "y", "z"}
	if len(got) != len(want) {
		t.Fatalf("got %d articles, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, got[i].Title, want[i])
		}
	}
}
