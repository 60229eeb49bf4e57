package geo

import (
	"context"
	"strings"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/geodata"
)

// textWeight sits below the registry: free-text mentions are suggestive
// but newsrooms mention foreign countries constantly.
const textWeight = 0.50

// minTextMentions filters out incidental one-off mentions.
const minTextMentions = 2

// TextStrategy counts country name and demonym mentions in the extracted
// page text supplied with the crawl event. The most-mentioned country
// wins, provided it clears the mention floor.
type TextStrategy struct{}

// NewTextStrategy creates the free-text mention strategy.
func NewTextStrategy() *TextStrategy {
	return &TextStrategy{}
}

func (s *TextStrategy) Name() string { return "text" }

func (s *TextStrategy) Resolve(_ context.Context, _, text string) (*Signal, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	code, count := dominantCountry(strings.ToLower(text))
	if code == "" || count < minTextMentions {
		return nil, nil
	}
	return &Signal{CountryCode: code, Weight: textWeight}, nil
}

// dominantCountry counts country name and demonym mentions and returns the
// leader. Counting uses padded substring matches so "Chinatown" does not
// count as China.
func dominantCountry(text string) (string, int) {
	padded := " " + punctToSpace(text) + " "

	counts := make(map[string]int)
	tally := func(term, code string) {
		if n := strings.Count(padded, " "+term+" "); n > 0 {
			counts[code] += n
		}
	}
	for name, code := range geodata.Names() {
		tally(name, code)
	}
	for alias, code := range geodata.Aliases() {
		tally(alias, code)
	}

	best, bestCount := "", 0
	for code, count := range counts {
		if count > bestCount || (count == bestCount && code < best) {
			best, bestCount = code, count
		}
	}
	return best, bestCount
}

// punctToSpace replaces separator punctuation so "Canada," and "Canada."
// still match word-boundary scans. Sentence-final dots become spaces;
// interior dots survive for aliases like "u.s.".
func punctToSpace(text string) string {
	text = strings.ReplaceAll(text, ". ", " ")
	text = strings.TrimSuffix(text, ".")
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', ';', ':', '!', '?', '(', ')', '[', ']', '"', '\'', '\n', '\r', '\t':
			return ' '
		default:
			return r
		}
	}, text)
}
