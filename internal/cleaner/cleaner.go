// Package cleaner turns scraped article markup into plain, comparable text.
package cleaner

import (
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultPhrases are outlet self-references stripped from every article.
var DefaultPhrases = []string{"fox news", "democracy now", "democracy now!"}

var (
	tagExpr   = regexp.MustCompile(`<[^>]*>`)
	spaceExpr = regexp.MustCompile(`\s+`)
	blockExpr = regexp.MustCompile(`(?i)<(/?)(p|div|br|li|td|tr|h[1-6]|blockquote)(\s[^>]*)?(/?)>`)
)

// Cleaner removes markup, advertisement links and outlet names from text.
type Cleaner struct {
	phrases *regexp.Regexp
}

// New builds a cleaner for the given phrases; with none it uses DefaultPhrases.
func New(phrases ...string) *Cleaner {
	if len(phrases) == 0 {
		phrases = DefaultPhrases
	}
	return &Cleaner{phrases: phraseExpr(phrases)}
}

var defaultCleaner = New()

// Clean applies the default cleaner.
func Clean(text string) string {
	return defaultCleaner.Clean(text)
}

// maxPasses bounds the fixed-point loop in Clean.
const maxPasses = 8

// Clean never fails: markup that cannot be parsed is stripped with a regexp instead.
// The result is stable under a second Clean.
func (c *Cleaner) Clean(text string) string {
	out := c.pass(text)
	// Decoded entities can form new tags and a removed phrase can join its neighbours into another.
	for i := 1; i < maxPasses; i++ {
		next := c.pass(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func (c *Cleaner) pass(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	plain := text
	if strings.ContainsAny(text, "<&") {
		plain = stripMarkup(text)
	}

	if c.phrases != nil {
		plain = c.phrases.ReplaceAllString(plain, "")
	}

	return strings.TrimSpace(spaceExpr.ReplaceAllString(plain, " "))
}

func stripMarkup(text string) string {
	spaced := blockExpr.ReplaceAllString(text, " <$1$2$3$4> ")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(spaced))
	if err != nil {
		return html.UnescapeString(tagExpr.ReplaceAllString(spaced, " "))
	}

	// Bold links are inline adverts for other stories.
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		if a.Find("strong, b").Length() > 0 {
			a.Remove()
		}
	})
	doc.Find("script, style").Remove()

	return doc.Text()
}

func phraseExpr(phrases []string) *regexp.Regexp {
	cleaned := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, spaceExpr.ReplaceAllString(regexp.QuoteMeta(p), `\s+`))
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	// Longest first so "democracy now!" wins over its prefix.
	sort.SliceStable(cleaned, func(i, j int) bool { return len(cleaned[i]) > len(cleaned[j]) })
	return regexp.MustCompile(`(?i)` + strings.Join(cleaned, "|"))
}
