package validate

import (
	"fmt"
	"strings"

	"github.com/siherrmann/hybridnlu/model"
)

// Report is the outcome of checking extracted entities against an intent's requirements.
type Report struct {
	Valid           bool     `json:"valid"`
	MissingRequired []string `json:"missing_required"`
	OptionalCount   int      `json:"optional_count"`
	OptionalNeeded  int      `json:"optional_needed"`
	NeedsFallback   bool     `json:"needs_fallback"`
	Reason          string   `json:"reason"`
}

// EntityValidator decides whether the entities of an utterance are sufficient for its intent.
type EntityValidator struct {
	requirements map[string]model.IntentRequirement
}

// NewEntityValidator creates an EntityValidator over a requirement table.
func NewEntityValidator(requirements map[string]model.IntentRequirement) *EntityValidator {
	return &EntityValidator{requirements: requirements}
}

// Validate checks the required and optional fields of intent.
// Unknown intents are valid without requirements.
func (v *EntityValidator) Validate(entities model.EntityMap, intent string) Report {
	req, ok := v.requirements[intent]
	if !ok {
		return Report{
			Valid:           true,
			MissingRequired: []string{},
			Reason:          fmt.Sprintf("Unknown intent: %s", intent),
		}
	}

	missing := []string{}
	for _, field := range req.Required {
		if !entities.HasFold(field) {
			missing = append(missing, field)
		}
	}

	optionalCount := 0
	for _, field := range req.Optional {
		if entities.HasFold(field) {
			optionalCount++
		}
	}

	report := Report{
		MissingRequired: missing,
		OptionalCount:   optionalCount,
		OptionalNeeded:  req.OptionalMin,
		Reason:          "All requirements met",
	}

	switch {
	case len(missing) > 0:
		report.NeedsFallback = true
		report.Reason = fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", "))
	case optionalCount < req.OptionalMin:
		report.NeedsFallback = true
		report.Reason = fmt.Sprintf("Insufficient optional fields: %d/%d found, need at least %d", optionalCount, len(req.Optional), req.OptionalMin)
	}
	report.Valid = !report.NeedsFallback

	return report
}

// Requirement returns the requirement of intent and whether it is known.
func (v *EntityValidator) Requirement(intent string) (model.IntentRequirement, bool) {
	req, ok := v.requirements[intent]
	return req, ok
}

// Final builds the validation block of the result from the final required
// and optional entity tables. errs are the post-processing diagnostics.
func Final(entities model.EntityMap, intent string, required map[string][]string, optional map[string][]string, errs []string) model.Validation {
	fields := required[intent]

	missing := []string{}
	for _, field := range fields {
		if !entities.Has(field) {
			missing = append(missing, field)
		}
	}

	hasOptional := false
	for _, field := range optional[intent] {
		if entities.Has(field) {
			hasOptional = true
			break
		}
	}

	if errs == nil {
		errs = []string{}
	}
	if fields == nil {
		fields = []string{}
	}

	return model.Validation{
		Valid:       len(missing) == 0,
		Missing:     missing,
		Errors:      errs,
		Required:    fields,
		HasOptional: hasOptional,
	}
}
