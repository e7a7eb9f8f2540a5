package extract

import (
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"github.com/siherrmann/hybridnlu/helper"
	"github.com/siherrmann/hybridnlu/model"
	"github.com/tsawler/prose/v3"
)

const (
	libraryPhoneConfidence           = 0.95
	libraryEmailConfidence           = 0.95
	libraryAddressConfidence         = 0.85
	libraryAddressFallbackConfidence = 0.80
	libraryNameConfidence            = 0.80
	libraryBirthdayConfidence        = 0.85
)

var (
	phoneCandidatePattern = regexp.MustCompile(`\+?\(?\d[\d\s().-]{5,}\d`)
	libraryDatePatterns   = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[./-]\d{1,2}[./-]\d{2,4}\b`),
		regexp.MustCompile(`\b\d{4}[./-]\d{1,2}[./-]\d{1,2}\b`),
		regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{4}\b`),
	}
)

// AddressParser finds postal addresses in free text.
type AddressParser interface {
	ParseAddresses(text string) ([]string, error)
}

// Capabilities records which backing libraries are usable. It is detected once.
type Capabilities struct {
	Phone          bool
	Email          bool
	Address        bool
	AddressTagging bool
	Names          bool
	Dates          bool
}

// Available returns the capability table keyed by concern.
func (c Capabilities) Available() map[string]bool {
	return map[string]bool{
		"phone":           c.Phone,
		"email":           c.Email,
		"address":         c.Address,
		"address_tagging": c.AddressTagging,
		"names":           c.Names,
		"dates":           c.Dates,
	}
}

// LibraryOption configures a LibraryExtractor.
type LibraryOption func(*LibraryExtractor)

// WithRegion sets the default phone region.
func WithRegion(region string) LibraryOption {
	return func(l *LibraryExtractor) {
		l.region = strings.ToUpper(region)
	}
}

// WithAddressParser sets the primary address parser.
func WithAddressParser(p AddressParser) LibraryOption {
	return func(l *LibraryExtractor) {
		l.addressParser = p
	}
}

// WithAddressTagger sets the address parser used when the primary one finds nothing.
func WithAddressTagger(p AddressParser) LibraryOption {
	return func(l *LibraryExtractor) {
		l.addressTagger = p
	}
}

// WithCapabilities overrides capability detection.
func WithCapabilities(c Capabilities) LibraryOption {
	return func(l *LibraryExtractor) {
		l.capabilities = &c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LibraryOption {
	return func(l *LibraryExtractor) {
		l.log = logger
	}
}

// LibraryExtractor delegates to specialised parsing libraries.
// Every concern without a usable library produces no candidates.
type LibraryExtractor struct {
	region        string
	addressParser AddressParser
	addressTagger AddressParser
	capabilities  *Capabilities
	log           *slog.Logger
}

// NewLibraryExtractor creates a LibraryExtractor and detects its capabilities.
func NewLibraryExtractor(opts ...LibraryOption) *LibraryExtractor {
	l := &LibraryExtractor{
		region: "US",
		log:    helper.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.capabilities == nil {
		c := DetectCapabilities(l.region, l.addressParser, l.addressTagger)
		l.capabilities = &c
	}

	l.log.Debug("Library extractor ready", slog.Any("capabilities", l.capabilities.Available()))

	return l
}

// DetectCapabilities checks which backing libraries are usable.
func DetectCapabilities(region string, addressParser AddressParser, addressTagger AddressParser) Capabilities {
	return Capabilities{
		Phone:          phonenumbers.GetCountryCodeForRegion(strings.ToUpper(region)) != 0,
		Email:          true,
		Address:        addressParser != nil,
		AddressTagging: addressTagger != nil,
		Names:          proseAvailable(),
		Dates:          true,
	}
}

func proseAvailable() (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_, err := prose.NewDocument("John Smith lives here.")
	return err == nil
}

// Capabilities returns the detected capability table.
func (l *LibraryExtractor) Capabilities() Capabilities {
	return *l.capabilities
}

func (l *LibraryExtractor) Strategy() model.Strategy {
	return model.StrategyLibrary
}

func (l *LibraryExtractor) Extract(text string) []model.Entity {
	var entities []model.Entity

	if l.capabilities.Phone {
		entities = append(entities, l.extractPhones(text)...)
	}
	if l.capabilities.Email {
		entities = append(entities, l.extractEmails(text)...)
	}
	if l.capabilities.Address || l.capabilities.AddressTagging {
		entities = append(entities, l.extractAddresses(text)...)
	}
	if l.capabilities.Names {
		entities = append(entities, l.extractNames(text)...)
	}
	if l.capabilities.Dates {
		entities = append(entities, l.extractBirthdays(text)...)
	}

	return entities
}

func (l *LibraryExtractor) extractPhones(text string) []model.Entity {
	var entities []model.Entity
	countryPrefix := fmt.Sprintf("+%d", phonenumbers.GetCountryCodeForRegion(l.region))

	for _, loc := range phoneCandidatePattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		candidate := text[start:end]
		if BirthdayPattern.MatchString(candidate) {
			continue
		}

		number, err := phonenumbers.Parse(candidate, l.region)
		if err != nil || !phonenumbers.IsValidNumber(number) {
			continue
		}

		formatted := phonenumbers.Format(number, phonenumbers.E164)
		entities = append(entities, newEntity(strings.TrimPrefix(formatted, countryPrefix), start, end, model.EntityPhone, libraryPhoneConfidence, model.StrategyLibrary))
	}

	return entities
}

func (l *LibraryExtractor) extractEmails(text string) []model.Entity {
	var entities []model.Entity

	for _, loc := range EmailPattern.FindAllStringIndex(text, -1) {
		candidate := text[loc[0]:loc[1]]
		addr, err := mail.ParseAddress(candidate)
		if err != nil || addr.Address != candidate {
			continue
		}
		entities = append(entities, newEntity(candidate, loc[0], loc[1], model.EntityEmail, libraryEmailConfidence, model.StrategyLibrary))
	}

	return entities
}

func (l *LibraryExtractor) extractAddresses(text string) []model.Entity {
	var entities []model.Entity

	if l.capabilities.Address {
		entities = l.addressEntities(text, l.addressParser, libraryAddressConfidence)
	}
	if len(entities) == 0 && l.capabilities.AddressTagging {
		entities = l.addressEntities(text, l.addressTagger, libraryAddressFallbackConfidence)
	}

	return entities
}

func (l *LibraryExtractor) addressEntities(text string, parser AddressParser, confidence float64) []model.Entity {
	if parser == nil {
		return nil
	}

	addresses, err := parser.ParseAddresses(text)
	if err != nil {
		l.log.Debug("Address parser failed", slog.Any("error", err))
		return nil
	}

	var entities []model.Entity
	for _, addr := range addresses {
		start := strings.Index(text, addr)
		if addr == "" || start < 0 {
			continue
		}
		entities = append(entities, newEntity(addr, start, start+len(addr), model.EntityAddress, confidence, model.StrategyLibrary))
	}
	return entities
}

func (l *LibraryExtractor) extractNames(text string) (entities []model.Entity) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Debug("Name tagger failed", slog.Any("panic", r))
			entities = nil
		}
	}()

	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil
	}

	cursor := 0
	for _, ent := range doc.Entities() {
		if !strings.EqualFold(ent.Label, "PERSON") {
			continue
		}

		name := strings.TrimSpace(ent.Text)
		name = strings.TrimSuffix(name, "'s")
		if name == "" || IsStopWord(name) {
			continue
		}

		idx := strings.Index(text[cursor:], name)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		cursor = start + len(name)
		entities = append(entities, newEntity(name, start, start+len(name), model.EntityName, libraryNameConfidence, model.StrategyLibrary))
	}

	return entities
}

func (l *LibraryExtractor) extractBirthdays(text string) []model.Entity {
	var entities []model.Entity

	for _, re := range libraryDatePatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			candidate := text[loc[0]:loc[1]]
			if _, err := ParseDate(candidate); err != nil {
				continue
			}
			entities = append(entities, newEntity(candidate, loc[0], loc[1], model.EntityBirthday, libraryBirthdayConfidence, model.StrategyLibrary))
			break
		}
	}

	return entities
}
