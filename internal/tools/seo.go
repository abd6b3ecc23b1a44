package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	apperrors "somikra/internal/errors"
)

type seo struct {
	fetcher PageFetcher
}

func (seo) Name() string       { return "seo" }
func (seo) Required() []string { return []string{"url"} }

func (s seo) Run(ctx context.Context, in Input) (string, error) {
	if s.fetcher == nil {
		return "", apperrors.ServiceUnavailable("page fetching is not configured")
	}
	page, err := s.fetcher.Fetch(ctx, in.get("url"))
	if err != nil {
		return "", err
	}

	stats := ScanPage(bytes.NewReader(page.Body))
	var b strings.Builder
	fmt.Fprintf(&b, "SEO report for %s\n", page.URL)
	if stats.Title == "" {
		b.WriteString("- Missing <title>: add a descriptive title of 50-60 characters.\n")
	} else {
		fmt.Fprintf(&b, "- Title (%d chars): %q\n", len([]rune(stats.Title)), stats.Title)
	}
	if stats.Description == "" {
		b.WriteString("- Missing meta description: write a 150-160 character summary.\n")
	} else {
		fmt.Fprintf(&b, "- Meta description (%d chars).\n", len([]rune(stats.Description)))
	}
	switch stats.H1 {
	case 0:
		b.WriteString("- No <h1> heading found.\n")
	case 1:
		b.WriteString("- One <h1> heading, as recommended.\n")
	default:
		fmt.Fprintf(&b, "- %d <h1> headings: keep a single primary heading.\n", stats.H1)
	}
	fmt.Fprintf(&b, "- %d <h2> headings, %d images (%d without alt text), ~%d words.",
		stats.H2, stats.Images, stats.ImagesMissingAlt, stats.Words)
	return b.String(), nil
}

type PageStats struct {
	Title            string
	Description      string
	H1               int
	H2               int
	Images           int
	ImagesMissingAlt int
	Words            int
}

// ScanPage tokenizes an HTML document and counts the on-page SEO signals.
func ScanPage(r io.Reader) PageStats {
	var stats PageStats
	z := html.NewTokenizer(r)
	inTitle, skip := false, 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return stats
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "title":
				inTitle = tt == html.StartTagToken
			case "script", "style":
				if tt == html.StartTagToken {
					skip++
				}
			case "h1":
				stats.H1++
			case "h2":
				stats.H2++
			case "img":
				stats.Images++
				if strings.TrimSpace(attr(tok, "alt")) == "" {
					stats.ImagesMissingAlt++
				}
			case "meta":
				if strings.EqualFold(attr(tok, "name"), "description") {
					stats.Description = strings.TrimSpace(attr(tok, "content"))
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "title":
				inTitle = false
			case "script", "style":
				if skip > 0 {
					skip--
				}
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := string(z.Text())
			if inTitle {
				stats.Title += strings.TrimSpace(text)
				continue
			}
			stats.Words += len(strings.Fields(text))
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
