package intent

import (
	"sort"
	"strings"
	"unicode"

	"github.com/siherrmann/hybridnlu/model"
)

const greetingIntent = "hello"

// listingPhrases mark the "show all" wording shared by notes and contacts.
var listingPhrases = []string{"show all", "list all", "display all"}

// topicalIntents resolves the listing conflict by the topic token present in the text.
var topicalIntents = []struct {
	token  string
	intent string
}{
	{token: "note", intent: "show_notes"},
	{token: "contact", intent: "list_all_contacts"},
}

// KeywordClassifier scores intents by keyword phrases found in the text.
type KeywordClassifier struct {
	keywords      map[string][]string
	intents       []string
	defaultIntent string
	thresholds    model.Thresholds
}

// NewKeywordClassifier creates a keyword classifier from the configuration tables.
// Greeting keywords are scored for the hello intent.
func NewKeywordClassifier(config model.NLUConfig) *KeywordClassifier {
	keywords := make(map[string][]string, len(config.KeywordMap)+1)
	for intent, kws := range config.KeywordMap {
		keywords[intent] = normalizeKeywords(kws)
	}
	if len(config.GreetingKeywords) > 0 {
		keywords[greetingIntent] = append(keywords[greetingIntent], normalizeKeywords(config.GreetingKeywords)...)
	}

	intents := make([]string, 0, len(keywords))
	for intent := range keywords {
		intents = append(intents, intent)
	}
	sort.Strings(intents)

	return &KeywordClassifier{
		keywords:      keywords,
		intents:       intents,
		defaultIntent: config.DefaultIntent,
		thresholds:    config.Thresholds,
	}
}

// Predict returns the best scoring intent with a confidence clamped into the keyword range.
// Without any keyword match it returns the default intent with the default confidence.
func (c *KeywordClassifier) Predict(text string) (string, float64) {
	scores := c.Scores(text)

	best := ""
	bestScore := 0.0
	for _, intent := range c.intents {
		if scores[intent] > bestScore {
			best = intent
			bestScore = scores[intent]
		}
	}

	if best == "" {
		return c.defaultIntent, c.thresholds.DefaultIntentConfidence
	}

	return best, clamp(bestScore, c.thresholds.KeywordConfidenceMin, c.thresholds.KeywordConfidenceMax)
}

// Scores returns the raw keyword score of every intent with at least one match.
func (c *KeywordClassifier) Scores(text string) map[string]float64 {
	lower := strings.ToLower(strings.TrimSpace(text))
	scores := map[string]float64{}
	if lower == "" {
		return scores
	}

	length := float64(len(lower))
	for _, intent := range c.intents {
		score := 0.0
		for _, kw := range c.keywords[intent] {
			idx := findKeyword(lower, kw)
			if idx < 0 {
				continue
			}
			s := float64(len(kw)) / length
			if idx == 0 {
				s *= 1.5
			}
			if lower == kw {
				s *= 2.0
			}
			score += s
		}
		if score > 0 {
			scores[intent] = score
		}
	}

	c.disambiguateListing(lower, scores)

	return scores
}

// disambiguateListing boosts notes or contacts listing for "show all" wording.
func (c *KeywordClassifier) disambiguateListing(lower string, scores map[string]float64) {
	listing := false
	for _, phrase := range listingPhrases {
		if strings.Contains(lower, phrase) {
			listing = true
			break
		}
	}
	if !listing {
		return
	}

	top := 0.0
	for _, s := range scores {
		top = max(top, s)
	}

	for _, ti := range topicalIntents {
		if !strings.Contains(lower, ti.token) || !c.sharesToken(ti.intent, ti.token) {
			continue
		}
		scores[ti.intent] = max(scores[ti.intent], top) * 1.5
		return
	}
}

func (c *KeywordClassifier) sharesToken(intent string, token string) bool {
	for _, kw := range c.keywords[intent] {
		if strings.Contains(kw, token) {
			return true
		}
	}
	return false
}

// findKeyword returns the index of kw in text where kw is not part of a longer word, or -1.
// ContainsKeyword reports whether the lowercase text contains kw between word boundaries.
func ContainsKeyword(text string, kw string) bool {
	return findKeyword(text, kw) >= 0
}

func findKeyword(text string, kw string) int {
	if kw == "" {
		return -1
	}
	offset := 0
	for {
		idx := strings.Index(text[offset:], kw)
		if idx < 0 {
			return -1
		}
		start := offset + idx
		end := start + len(kw)
		if boundary(text, start-1) && boundary(text, end) {
			return start
		}
		offset = start + 1
	}
}

func boundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	r := rune(text[i])
	return !(unicode.IsLetter(r) || unicode.IsDigit(r))
}

func normalizeKeywords(kws []string) []string {
	out := make([]string, 0, len(kws))
	for _, kw := range kws {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func clamp(v float64, lo float64, hi float64) float64 {
	return max(lo, min(hi, v))
}
