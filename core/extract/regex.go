package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/siherrmann/hybridnlu/model"
)

const (
	regexPhoneConfidence    = 0.75
	regexEmailConfidence    = 0.80
	regexBirthdayConfidence = 0.70
	regexTagConfidence      = 0.95
	regexIDConfidence       = 1.0
	regexNoteConfidence     = 0.75
)

var (
	PhonePattern    = regexp.MustCompile(`\b(?:\+?1[-.]?)?(?:\(?\d{3}\)?[-.\s]?)?\d{3}[-.\s]?\d{4}\b`)
	EmailPattern    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	BirthdayPattern = regexp.MustCompile(`\b(?:` +
		`\d{1,2}[./-]\d{1,2}[./-]\d{2,4}|` +
		`\d{4}[./-]\d{1,2}[./-]\d{1,2}|` +
		`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{4}|` +
		`\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4}` +
		`)\b`)
	TagPattern  = regexp.MustCompile(`#\w+`)
	UUIDPattern = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)
)

var quotedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`["']([^"']{2,})["']`),
	regexp.MustCompile(`[\x{2018}\x{2019}]([^\x{2018}\x{2019}]{2,})[\x{2018}\x{2019}]`),
	regexp.MustCompile(`[\x{201C}\x{201D}]([^\x{201C}\x{201D}]{2,})[\x{201C}\x{201D}]`),
}

// notePrefixes are tried in order; the first one that removes something wins.
var notePrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*add\s+a?\s*note\s+`),
	regexp.MustCompile(`(?i)^\s*create\s+a?\s*note\s+`),
	regexp.MustCompile(`(?i)^\s*new\s+note\s+`),
	regexp.MustCompile(`(?i)^\s*make\s+a?\s*note\s+`),
	regexp.MustCompile(`(?i)^\s*write\s+a?\s*note\s+`),
	regexp.MustCompile(`(?i)^\s*note\s*:\s*`),
	regexp.MustCompile(`(?i)^\s*note\s+about\s+`),
	regexp.MustCompile(`(?i)^\s*note\s+that\s+`),
	regexp.MustCompile(`(?i)^\s*note\s+`),
}

var (
	whitespacePattern   = regexp.MustCompile(`\s+`)
	leadingPunctuation  = regexp.MustCompile(`^\s*[:;,.\\-]\s*`)
	trailingPunctuation = regexp.MustCompile(`\s*[:;,.\\-]\s*$`)
	nonWordOrSpace      = regexp.MustCompile(`[^\w\s]`)
)

// RegexExtractor matches fixed patterns for phone, email, birthday, tag, id and note text.
type RegexExtractor struct{}

// NewRegexExtractor creates a RegexExtractor.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

func (r *RegexExtractor) Strategy() model.Strategy {
	return model.StrategyRegex
}

// Extract returns the first phone, email, birthday and id match, every tag and the note text.
func (r *RegexExtractor) Extract(text string) []model.Entity {
	var entities []model.Entity

	firstMatch := func(re *regexp.Regexp, entityType model.EntityType, confidence float64) {
		if loc := re.FindStringIndex(text); loc != nil {
			entities = append(entities, newEntity(text[loc[0]:loc[1]], loc[0], loc[1], entityType, confidence, model.StrategyRegex))
		}
	}

	firstMatch(PhonePattern, model.EntityPhone, regexPhoneConfidence)
	firstMatch(EmailPattern, model.EntityEmail, regexEmailConfidence)
	firstMatch(BirthdayPattern, model.EntityBirthday, regexBirthdayConfidence)

	for _, loc := range TagPattern.FindAllStringIndex(text, -1) {
		entities = append(entities, newEntity(text[loc[0]:loc[1]], loc[0], loc[1], model.EntityTag, regexTagConfidence, model.StrategyRegex))
	}

	firstMatch(UUIDPattern, model.EntityID, regexIDConfidence)

	if note, start, end, ok := ExtractNoteText(text); ok {
		entities = append(entities, newEntity(note, start, end, model.EntityNoteText, regexNoteConfidence, model.StrategyRegex))
	}

	return entities
}

// ExtractEntityMap runs the fixed patterns and returns the first value per type.
func (r *RegexExtractor) ExtractEntityMap(text string) model.EntityMap {
	entities := model.EntityMap{}
	for _, e := range r.Extract(text) {
		if _, ok := entities[string(e.Type)]; !ok {
			entities[string(e.Type)] = e.Text
		}
	}
	return entities
}

// ExtractNoteText finds the note body of an utterance.
// A quoted span wins; otherwise a note command prefix and hashtags are removed
// and the rest is cleaned up. The returned offsets locate the note in text.
func ExtractNoteText(text string) (string, int, int, bool) {
	for _, re := range quotedPatterns {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		inner := text[loc[2]:loc[3]]
		note := strings.TrimSpace(inner)
		if note == "" {
			continue
		}
		start := loc[2] + strings.Index(inner, note)
		return note, start, start + len(note), true
	}

	cleaned := text
	for _, re := range notePrefixes {
		cleaned = re.ReplaceAllString(cleaned, "")
		if cleaned != text {
			break
		}
	}
	prefixEnd := len(text) - len(cleaned)

	cleaned = TagPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = leadingPunctuation.ReplaceAllString(cleaned, "")
	cleaned = trailingPunctuation.ReplaceAllString(cleaned, "")
	cleaned = strings.Trim(cleaned, `'"`)

	alphanumeric := nonWordOrSpace.ReplaceAllString(cleaned, "")
	if utf8.RuneCountInString(alphanumeric) < 2 {
		return "", 0, 0, false
	}
	if utf8.RuneCountInString(cleaned) < 3 && len(strings.Fields(cleaned)) < 1 {
		return "", 0, 0, false
	}

	if idx := strings.Index(text, cleaned); idx >= 0 {
		return cleaned, idx, idx + len(cleaned), true
	}

	// Tags or cleanup split the note; locate it on the widest tag-free stretch after the prefix.
	start, end := noteSpan(text, prefixEnd)
	return cleaned, start, end, true
}

// noteSpan returns the widest stretch of text after from that contains no hashtag,
// trimmed of surrounding whitespace and punctuation. Tag spans never overlap it.
func noteSpan(text string, from int) (int, int) {
	bestStart, bestEnd := from, from
	segmentStart := from
	bounds := append(TagPattern.FindAllStringIndex(text[from:], -1), []int{len(text) - from, len(text) - from})
	for _, loc := range bounds {
		start, end := trimSpan(text, segmentStart, from+loc[0])
		if end-start > bestEnd-bestStart {
			bestStart, bestEnd = start, end
		}
		segmentStart = from + loc[1]
	}
	return bestStart, bestEnd
}

func trimSpan(text string, start, end int) (int, int) {
	for start < end && strings.ContainsRune(" \t\n:;,.-", rune(text[start])) {
		start++
	}
	for end > start && strings.ContainsRune(" \t\n:;,.-", rune(text[end-1])) {
		end--
	}
	return start, end
}
