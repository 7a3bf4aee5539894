package delivery_test

import (
	"strings"
	"testing"

	"marquee/internal/catalog"
	"marquee/internal/delivery"
	"marquee/internal/enrich"
	"marquee/internal/mediaprobe"
	"marquee/internal/token"
)

func renderableItem() *enrich.Item {
	return &enrich.Item{
		Raw: catalog.RawItem{
			ID:          42,
			Title:       "Dune: Part Two",
			Rating:      8.2,
			VoteCount:   4100,
			Genres:      []string{"Science Fiction", "Adventure", "Drama"},
			ReleaseDate: "2026-03-01",
		},
		Summary:    "Paul unites with the Fremen.",
		Media:      mediaprobe.Unavailable(),
		TrailerURL: "https://www.youtube.com/watch?v=abc",
	}
}

func TestRenderCaptionFields(t *testing.T) {
	caption, _ := delivery.Render(renderableItem(), delivery.View{
		Heading: "Out today:", Index: 0, Total: 1, SessionKey: "k",
	})

	for _, want := range []string{
		"Out today:",
		"*Dune: Part Two*",
		"⭐ 8.2/10 (4100 votes)",
		"Genre: Science Fiction, Adventure",
		"Release: 2026-03-01",
		"Paul unites with the Fremen.",
	} {
		if !strings.Contains(caption, want) {
			t.Fatalf("caption missing %q:\n%s", want, caption)
		}
	}
	if strings.Contains(caption, "Drama") {
		t.Fatalf("caption should cap genres at two:\n%s", caption)
	}
}

func TestRenderCaptionSkipsEmptyFields(t *testing.T) {
	item := &enrich.Item{
		Raw:   catalog.RawItem{ID: 1, Title: "Bare"},
		Media: mediaprobe.Unavailable(),
	}
	caption, _ := delivery.Render(item, delivery.View{Total: 1})

	for _, absent := range []string{"⭐", "Genre:", "Release:"} {
		if strings.Contains(caption, absent) {
			t.Fatalf("caption should omit %q for empty data:\n%s", absent, caption)
		}
	}
}

func TestRenderKeyboardBoundaries(t *testing.T) {
	item := renderableItem()

	// First page: no back arrow.
	_, kb := delivery.Render(item, delivery.View{Index: 0, Total: 3, SessionKey: "key"})
	nav := kb.Rows[0]
	if len(nav) != 2 {
		t.Fatalf("first page should show position and forward only, got %d buttons", len(nav))
	}
	if nav[0].Data != delivery.NoopData {
		t.Fatalf("position button must be a no-op, got %q", nav[0].Data)
	}
	fwd, err := token.Decode(nav[1].Data)
	if err != nil {
		t.Fatalf("forward button carries a bad token: %v", err)
	}
	if fwd.Index != 1 || fwd.SessionKey != "key" {
		t.Fatalf("forward token wrong: %+v", fwd)
	}

	// Middle page: both arrows.
	_, kb = delivery.Render(item, delivery.View{Index: 1, Total: 3, SessionKey: "key"})
	if len(kb.Rows[0]) != 3 {
		t.Fatalf("middle page should show both arrows, got %d buttons", len(kb.Rows[0]))
	}

	// Last page: no forward arrow.
	_, kb = delivery.Render(item, delivery.View{Index: 2, Total: 3, SessionKey: "key"})
	nav = kb.Rows[0]
	if len(nav) != 2 {
		t.Fatalf("last page should show back and position only, got %d buttons", len(nav))
	}
	back, err := token.Decode(nav[0].Data)
	if err != nil {
		t.Fatalf("back button carries a bad token: %v", err)
	}
	if back.Index != 1 {
		t.Fatalf("back token wrong index: %d", back.Index)
	}
}

func TestRenderKeyboardSingleItemHasNoNav(t *testing.T) {
	_, kb := delivery.Render(renderableItem(), delivery.View{Index: 0, Total: 1, SessionKey: "key"})
	for _, row := range kb.Rows {
		for _, b := range row {
			if b.Data != "" && b.Data != delivery.NoopData {
				t.Fatalf("single-item view should carry no navigation, got %+v", b)
			}
		}
	}
}

func TestRenderTrailerButton(t *testing.T) {
	_, kb := delivery.Render(renderableItem(), delivery.View{Total: 1})
	found := false
	for _, row := range kb.Rows {
		for _, b := range row {
			if b.URL == "https://www.youtube.com/watch?v=abc" {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("trailer button missing from keyboard")
	}
}
