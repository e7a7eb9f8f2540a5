package model

// EntityType is the kind of information an extracted span carries.
type EntityType string

const (
	EntityName     EntityType = "name"
	EntityPhone    EntityType = "phone"
	EntityEmail    EntityType = "email"
	EntityAddress  EntityType = "address"
	EntityBirthday EntityType = "birthday"
	EntityTag      EntityType = "tag"
	EntityNoteText EntityType = "note_text"
	EntityID       EntityType = "id"
	EntityDays     EntityType = "days"
)

// EntityTypes lists every type the NER model and the extractors can produce.
var EntityTypes = []EntityType{
	EntityName,
	EntityPhone,
	EntityEmail,
	EntityAddress,
	EntityBirthday,
	EntityTag,
	EntityNoteText,
	EntityID,
	EntityDays,
}

// IsEntityType reports whether s names a known entity type.
func IsEntityType(s string) bool {
	for _, t := range EntityTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Strategy identifies the extractor that produced a candidate.
type Strategy string

const (
	StrategyLibrary   Strategy = "library"
	StrategyRegex     Strategy = "regex"
	StrategyML        Strategy = "ml"
	StrategyHeuristic Strategy = "heuristic"
)

// Entity is an extraction candidate. Start and End are byte offsets into the original text.
type Entity struct {
	Text       string     `json:"text"`
	Start      int        `json:"start"`
	End        int        `json:"end"`
	Type       EntityType `json:"entity_type"`
	Confidence float64    `json:"confidence"`
	Strategy   Strategy   `json:"strategy"`
}

// Overlaps reports whether the entity shares at least one character with [start, end).
func (e Entity) Overlaps(start int, end int) bool {
	return !(e.End <= start || e.Start >= end)
}
