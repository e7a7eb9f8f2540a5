package postprocess

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/nyaruka/phonenumbers"
	"github.com/siherrmann/hybridnlu/core/extract"
	"github.com/siherrmann/hybridnlu/model"
)

// Derived entity keys written next to the normalized values.
const (
	KeyPhoneNational = "phone_national"
	KeyAge           = "age"
	KeyCity          = "city"
)

var (
	whitespace       = regexp.MustCompile(`\s+`)
	nonTagCharacters = regexp.MustCompile(`[^\w#]`)
	trailingCity     = regexp.MustCompile(`,\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)$`)
	streetWords      = map[string]bool{"street": true, "road": true, "avenue": true, "drive": true, "lane": true}
)

// Rules normalizes extracted values and flags the ones that fail validation.
type Rules struct {
	region string
	now    func() time.Time
}

// Option configures Rules.
type Option func(*Rules)

// WithClock sets the clock used to compute ages.
func WithClock(now func() time.Time) Option {
	return func(r *Rules) {
		r.now = now
	}
}

// NewRules creates Rules that parse phone numbers for region.
func NewRules(region string, opts ...Option) *Rules {
	if region == "" {
		region = "US"
	}
	r := &Rules{
		region: strings.ToUpper(region),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply returns a normalized copy of entities and the validation errors.
// Invalid values are kept as extracted and flagged with their _<field>_valid key.
func (r *Rules) Apply(entities model.EntityMap) (model.EntityMap, []string) {
	out := entities.Clone()
	var errs []string

	errs = append(errs, r.phone(out)...)
	errs = append(errs, r.email(out)...)
	errs = append(errs, r.birthday(out)...)
	r.address(out)
	r.tag(out)
	errs = append(errs, r.name(out)...)
	r.noteText(out)

	return out, errs
}

func (r *Rules) phone(entities model.EntityMap) []string {
	raw := strings.TrimSpace(entities["phone"])
	if raw == "" {
		return nil
	}

	number, err := phonenumbers.Parse(raw, r.region)
	if err != nil {
		entities[model.KeyPhoneValid] = "false"
		return []string{fmt.Sprintf("Failed to parse phone: %v", err)}
	}
	if !phonenumbers.IsValidNumber(number) {
		entities[model.KeyPhoneValid] = "false"
		return []string{fmt.Sprintf("Invalid phone number: %s", raw)}
	}

	entities["phone"] = phonenumbers.Format(number, phonenumbers.E164)
	entities[KeyPhoneNational] = phonenumbers.Format(number, phonenumbers.NATIONAL)
	entities[model.KeyPhoneValid] = "true"
	return nil
}

func (r *Rules) email(entities model.EntityMap) []string {
	raw := strings.TrimSpace(entities["email"])
	if raw == "" {
		return nil
	}

	// The domain needs a dot; mail.ParseAddress accepts local hosts.
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw || !strings.Contains(raw[strings.LastIndex(raw, "@"):], ".") {
		entities[model.KeyEmailValid] = "false"
		return []string{fmt.Sprintf("Invalid email: %s", raw)}
	}

	at := strings.LastIndex(addr.Address, "@")
	entities["email"] = addr.Address[:at] + strings.ToLower(addr.Address[at:])
	entities[model.KeyEmailValid] = "true"
	return nil
}

func (r *Rules) birthday(entities model.EntityMap) []string {
	raw := strings.TrimSpace(entities["birthday"])
	if raw == "" {
		return nil
	}

	date, err := extract.ParseDate(raw)
	if err != nil {
		entities[model.KeyBirthdayValid] = "false"
		return []string{fmt.Sprintf("Failed to parse birthday: %v", err)}
	}

	entities["birthday"] = date.Format("02.01.2006")
	entities[KeyAge] = strconv.Itoa(age(date, r.now()))
	entities[model.KeyBirthdayValid] = "true"
	return nil
}

func (r *Rules) address(entities model.EntityMap) {
	raw := strings.TrimSpace(entities["address"])
	if raw == "" {
		return
	}

	address := whitespace.ReplaceAllString(raw, " ")
	entities["address"] = address

	if m := trailingCity.FindStringSubmatch(address); m != nil {
		entities[KeyCity] = m[1]
		return
	}

	words := strings.Fields(address)
	last := words[len(words)-1]
	if isCapitalized(last) && !streetWords[strings.ToLower(last)] {
		entities[KeyCity] = last
	}
}

func (r *Rules) tag(entities model.EntityMap) {
	raw := strings.TrimSpace(entities["tag"])
	if raw == "" {
		return
	}

	if !strings.HasPrefix(raw, "#") {
		raw = "#" + raw
	}
	entities["tag"] = nonTagCharacters.ReplaceAllString(raw, "")
}

func (r *Rules) name(entities model.EntityMap) []string {
	raw := strings.TrimSpace(entities["name"])
	if raw == "" {
		return nil
	}

	words := strings.Fields(raw)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	name := strings.Join(words, " ")
	entities["name"] = name

	if len([]rune(name)) < 2 {
		entities[model.KeyNameValid] = "false"
		return []string{fmt.Sprintf("Name too short: %s", name)}
	}
	entities[model.KeyNameValid] = "true"
	return nil
}

func (r *Rules) noteText(entities model.EntityMap) {
	raw := strings.TrimSpace(entities["note_text"])
	if raw == "" {
		return
	}
	entities["note_text"] = strings.Trim(whitespace.ReplaceAllString(raw, " "), `'"`)
}

// age returns the completed years between birth and now.
func age(birth time.Time, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func isCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}
