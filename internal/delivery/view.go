package delivery

import (
	"fmt"
	"strings"

	"marquee/internal/enrich"
	"marquee/internal/token"
)

// NoopData is the callback payload for buttons that only display state (the
// position indicator). Handlers answer it without re-rendering.
const NoopData = "noop"

// maxCaptionGenres bounds the genre line; more than two reads as clutter on
// a phone screen.
const maxCaptionGenres = 2

// View positions one item inside its committed session for rendering.
type View struct {
	Heading    string
	Index      int
	Total      int
	SessionKey string
}

// Render builds the Markdown caption and navigation keyboard for an item.
// Empty fields are skipped rather than rendered as blanks.
func Render(item *enrich.Item, view View) (string, Keyboard) {
	return renderCaption(item, view), renderKeyboard(item, view)
}

func renderCaption(item *enrich.Item, view View) string {
	var b strings.Builder
	if view.Heading != "" {
		b.WriteString(view.Heading)
		b.WriteString("\n\n")
	}
	b.WriteString("*")
	b.WriteString(item.Raw.Title)
	b.WriteString("*\n")
	if item.Raw.Rating > 0 {
		fmt.Fprintf(&b, "⭐ %.1f/10", item.Raw.Rating)
		if item.Raw.VoteCount > 0 {
			fmt.Fprintf(&b, " (%d votes)", item.Raw.VoteCount)
		}
		b.WriteString("\n")
	}
	if len(item.Raw.Genres) > 0 {
		genres := item.Raw.Genres
		if len(genres) > maxCaptionGenres {
			genres = genres[:maxCaptionGenres]
		}
		b.WriteString("Genre: ")
		b.WriteString(strings.Join(genres, ", "))
		b.WriteString("\n")
	}
	if item.Raw.ReleaseDate != "" {
		b.WriteString("Release: ")
		b.WriteString(item.Raw.ReleaseDate)
		b.WriteString("\n")
	}
	if item.Summary != "" {
		b.WriteString("\n")
		b.WriteString(item.Summary)
	}
	return b.String()
}

func renderKeyboard(item *enrich.Item, view View) Keyboard {
	var kb Keyboard

	if view.Total > 1 {
		var nav []Button
		if view.Index > 0 {
			nav = append(nav, Button{
				Label: "⬅️",
				Data:  token.Token{SessionKey: view.SessionKey, Index: view.Index - 1}.Encode(),
			})
		}
		nav = append(nav, Button{
			Label: fmt.Sprintf("[%d/%d]", view.Index+1, view.Total),
			Data:  NoopData,
		})
		if view.Index < view.Total-1 {
			nav = append(nav, Button{
				Label: "➡️",
				Data:  token.Token{SessionKey: view.SessionKey, Index: view.Index + 1}.Encode(),
			})
		}
		kb.Rows = append(kb.Rows, nav)
	}

	if item.TrailerURL != "" {
		kb.Rows = append(kb.Rows, []Button{{Label: "🎬 Trailer", URL: item.TrailerURL}})
	}
	return kb
}
