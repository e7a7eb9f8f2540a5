package template

import (
	"regexp"
	"strings"

	"github.com/siherrmann/hybridnlu/core/intent"
	"github.com/siherrmann/hybridnlu/model"
)

const (
	searchConfidence = 0.65
	helpConfidence   = 0.8
	systemConfidence = 0.9
	searchNotes      = "search_notes"
)

// rule maps command phrases to an intent. Rules are checked in order.
type rule struct {
	intent     string
	phrases    []string
	confidence float64
}

var (
	templatePhonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+?1?\s*\(?(\d{3})\)?[\s.-]?(\d{3})[\s.-]?(\d{4})`),
		regexp.MustCompile(`\+?(\d{1,3})[\s.-]?\(?(\d{2,4})\)?[\s.-]?(\d{3,4})[\s.-]?(\d{4})`),
		regexp.MustCompile(`\b(\d{10})\b`),
		regexp.MustCompile(`\b(\d{3})[\s.-]?(\d{3})[\s.-]?(\d{4})\b`),
		regexp.MustCompile(`\b(\d{3})[\s.-]?(\d{4})\b`),
		regexp.MustCompile(`\b(\d{7,})\b`),
	}
	templateEmailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	templateTagPattern   = regexp.MustCompile(`#(\w+)`)
	templateIDPatterns   = []*regexp.Regexp{
		regexp.MustCompile(`(?i)note\s+(?:id\s+)?(\d+)`),
		regexp.MustCompile(`(?i)id\s+(\d+)`),
		regexp.MustCompile(`#(\d+)`),
	}
	templateDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})\b`),
		regexp.MustCompile(`(?i)\b(\d{4})[/.-](\d{1,2})[/.-](\d{1,2})\b`),
		regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+(\d{1,2}),?\s+(\d{4})\b`),
	}
	templateNamePattern   = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2})\b`)
	templateStreetPattern = regexp.MustCompile(`(?i)\d+\s+[A-Z][a-z]+\s+(Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr)`)
	templateFromPattern   = regexp.MustCompile(`(?i)from\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*(?:,\s*[A-Z][a-z]+)?)`)
	templateQuotePatterns = []*regexp.Regexp{
		regexp.MustCompile(`"([^"]+)"`),
		regexp.MustCompile(`'([^']+)'`),
	}
	templateNotePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:add|create|new)\s+note\s+["']?(.+?)["']?$`),
		regexp.MustCompile(`(?i)(?:edit|update)\s+note\s+\d+\s+(.+)$`),
		regexp.MustCompile(`(?i)note:\s*(.+)$`),
		regexp.MustCompile(`(?i)note\s+(?:id\s+)?\d+\s+(.+)$`),
	}
)

// excludedNameWords never appear in a template name.
var excludedNameWords = map[string]bool{
	"Add": true, "Edit": true, "Delete": true, "Remove": true, "Show": true, "List": true,
	"Create": true, "New": true, "Update": true, "Change": true, "Find": true, "Search": true,
	"Contact": true, "Note": true, "Birthday": true, "Tag": true, "Email": true,
	"Phone": true, "Address": true, "Help": true, "Exit": true,
}

// Parser guesses intent and entities from command phrases and loose patterns.
// It is the last fallback of the pipeline.
type Parser struct {
	base  float64
	match float64
	rules []rule
}

// NewParser creates a Parser. The greeting phrases of config map to hello.
func NewParser(config model.NLUConfig) *Parser {
	base := config.Thresholds.TemplateBase
	match := config.Thresholds.TemplateMatch

	return &Parser{
		base:  base,
		match: match,
		rules: []rule{
			{"add_contact", []string{"add contact", "new contact", "create contact", "save contact", "add person", "new person"}, match},
			{"edit_email", []string{"change email", "edit email", "update email", "email to"}, match},
			{"edit_phone", []string{"change phone", "edit phone", "update phone", "modify phone"}, match},
			{"edit_address", []string{"change address", "edit address", "update address"}, match},
			{"delete_contact", []string{"delete contact", "remove contact", "erase contact"}, match},
			{"add_note", []string{"add note", "create note", "new note", "make note", "create a note", "add a note"}, match},
			{"edit_note", []string{"edit note", "update note", "modify note", "change note"}, match},
			{"delete_note", []string{"delete note", "remove note", "erase note"}, match},
			{"show_notes", []string{"show notes", "list notes", "display notes", "my notes"}, match},
			{"list_birthdays", []string{"show birthday", "list birthday", "birthdays for", "birthdays in", "birthdays next"}, match},
			{"add_birthday", []string{"add birthday", "set birthday", "birthday for", "born on"}, match},
			{"list_all_contacts", []string{"show all", "list all", "all contacts", "show contacts", "list contacts"}, match},
			{"search_contacts", []string{"search contact", "find contact", "look up"}, searchConfidence},
			{searchNotes, []string{"search note", "find note"}, searchConfidence},
			{"add_note_tag", []string{"add tag", "tag note", "add note tag"}, match},
			{"remove_note_tag", []string{"remove tag", "delete tag", "remove note tag"}, match},
			{"hello", config.GreetingKeywords, systemConfidence},
			{"help", []string{"help", "commands", "what can"}, helpConfidence},
			{"exit", []string{"exit", "quit", "bye", "goodbye", "close"}, systemConfidence},
		},
	}
}

// Parse returns a template result for text. Entities of entitiesHint are kept;
// missing ones are filled from loose patterns. The intent cascade only runs
// when intentHint is empty or help.
func (p *Parser) Parse(text string, intentHint string, entitiesHint model.EntityMap) *model.NLUResult {
	result := &model.NLUResult{
		Intent:     intentHint,
		Confidence: p.base,
		Entities:   ExtractEntities(text, entitiesHint),
		Raw: model.RawResult{
			Source:            model.SourceTemplate,
			EntityConfidences: model.Confidences{},
		},
	}
	if result.Intent == "" {
		result.Intent = "help"
	}

	if intentHint == "" || intentHint == "help" {
		if intentName, confidence, ok := p.matchIntent(text); ok {
			result.Intent = intentName
			result.Confidence = confidence
		}
	}

	return result
}

func (p *Parser) matchIntent(text string) (string, float64, bool) {
	lower := strings.ToLower(text)

	for _, r := range p.rules {
		for _, phrase := range r.phrases {
			if !intent.ContainsKeyword(lower, strings.ToLower(phrase)) {
				continue
			}
			if r.intent == searchNotes {
				if strings.Contains(lower, "tag") || strings.Contains(text, "#") {
					return "search_notes_by_tag", r.confidence, true
				}
				return "search_notes_text", r.confidence, true
			}
			return r.intent, r.confidence, true
		}
	}

	return "", 0, false
}

// ExtractEntities fills the fields missing from existing with loose patterns.
// Every field is independent; the first match wins.
func ExtractEntities(text string, existing model.EntityMap) model.EntityMap {
	entities := existing.Compact()

	if !entities.Has("phone") {
		for _, re := range templatePhonePatterns {
			if m := re.FindStringSubmatch(text); m != nil {
				entities["phone"] = strings.Join(m[1:], "")
				break
			}
		}
	}

	if !entities.Has("email") {
		if m := templateEmailPattern.FindString(text); m != "" {
			entities["email"] = m
		}
	}

	if !entities.Has("tag") {
		if m := templateTagPattern.FindStringSubmatch(text); m != nil {
			entities["tag"] = "#" + m[1]
		}
	}

	if !entities.Has("id") {
		for _, re := range templateIDPatterns {
			if m := re.FindStringSubmatch(text); m != nil {
				entities["id"] = m[1]
				break
			}
		}
	}

	if !entities.Has("birthday") {
		for _, re := range templateDatePatterns {
			if m := re.FindString(text); m != "" {
				entities["birthday"] = m
				break
			}
		}
	}

	if !entities.Has("name") {
		for _, m := range templateNamePattern.FindAllString(text, -1) {
			if !hasExcludedWord(m) {
				entities["name"] = m
				break
			}
		}
	}

	if !entities.Has("address") {
		if m := templateStreetPattern.FindString(text); m != "" {
			entities["address"] = m
		} else if m := templateFromPattern.FindStringSubmatch(text); m != nil {
			entities["address"] = m[1]
		}
	}

	if !entities.Has("note_text") {
		if note, ok := noteText(text); ok {
			entities["note_text"] = note
		}
	}

	return entities
}

func noteText(text string) (string, bool) {
	for _, re := range templateQuotePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}

	for _, re := range templateNotePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		note := strings.Trim(strings.TrimSpace(m[1]), `"' `)
		return note, note != ""
	}

	return "", false
}

func hasExcludedWord(name string) bool {
	for _, w := range strings.Fields(name) {
		if excludedNameWords[w] {
			return true
		}
	}
	return false
}
