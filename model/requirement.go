package model

// IntentRequirement lists the fields an intent needs before fallback stages can be skipped.
type IntentRequirement struct {
	Required    []string `json:"required" yaml:"required"`
	Optional    []string `json:"optional" yaml:"optional"`
	OptionalMin int      `json:"optional_min" yaml:"optional_min"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// DefaultIntentRequirements returns the requirement table used to decide
// whether the regex/heuristic fallback runs.
func DefaultIntentRequirements() map[string]IntentRequirement {
	return map[string]IntentRequirement{
		"add_contact":         {Required: []string{"name", "phone"}, Optional: []string{"email", "address", "birthday"}, Description: "Add new contact with name and phone"},
		"edit_phone":          {Required: []string{"name", "phone"}, Description: "Change phone number for contact"},
		"edit_email":          {Required: []string{"name", "email"}, Description: "Update email address for contact"},
		"edit_address":        {Required: []string{"name", "address"}, Description: "Update address for contact"},
		"delete_contact":      {Required: []string{"name"}, Description: "Delete contact by name"},
		"search_contacts":     {Required: []string{"query"}, Description: "Search contacts by name or other fields"},
		"add_birthday":        {Required: []string{"name", "birthday"}, Description: "Add or update birthday for contact"},
		"list_birthdays":      {Optional: []string{"days", "weeks", "months"}, Description: "List upcoming birthdays"},
		"add_note":            {Required: []string{"note_text"}, Optional: []string{"tag"}, Description: "Create new note"},
		"edit_note":           {Required: []string{"id", "note_text"}, Description: "Edit existing note"},
		"remove_note":         {Required: []string{"id"}, Description: "Remove note by ID"},
		"show_notes":          {Description: "Show all notes"},
		"add_note_tag":        {Required: []string{"id", "tag"}, Description: "Add tag to note"},
		"remove_note_tag":     {Required: []string{"id", "tag"}, Description: "Remove tag from note"},
		"search_notes_text":   {Required: []string{"note_text"}, Description: "Search notes by text content"},
		"search_notes_by_tag": {Required: []string{"tag"}, Description: "Search notes by tag"},
		"list_all_contacts":   {Description: "List all contacts"},
		"hello":               {Description: "Hello"},
		"help":                {Description: "Show help information"},
		"exit":                {Description: "Exit the application"},
		"show_phone":          {Required: []string{"name"}, Description: "Show phone number for contact"},
		"add_email":           {Required: []string{"name", "email"}, Description: "Add email to contact"},
		"remove_email":        {Required: []string{"name"}, Description: "Remove email from contact"},
		"add_address":         {Required: []string{"name", "address"}, Description: "Add address to contact"},
		"remove_address":      {Required: []string{"name"}, Description: "Remove address from contact"},
		"show_birthday":       {Required: []string{"name"}, Description: "Show birthday for contact"},
	}
}

// DefaultRequiredEntities returns the fields the final validation pass checks per intent.
// Intents not listed have no requirements.
func DefaultRequiredEntities() map[string][]string {
	return map[string][]string{
		"add_contact":         {"name", "phone"},
		"edit_phone":          {"name", "phone"},
		"edit_email":          {"name", "email"},
		"edit_address":        {"name", "address"},
		"delete_contact":      {"name"},
		"search_contacts":     {},
		"add_birthday":        {"name", "birthday"},
		"add_note":            {"note_text"},
		"edit_note":           {"id", "note_text"},
		"delete_note":         {"id"},
		"add_note_tag":        {"id", "tag"},
		"remove_note_tag":     {"id", "tag"},
		"search_notes_text":   {},
		"search_notes_by_tag": {"tag"},
	}
}

// DefaultOptionalEntities returns the optional fields whose presence turns a
// command into a multi-step command pipeline.
func DefaultOptionalEntities() map[string][]string {
	return map[string][]string{
		"add_contact":     {"email", "address", "birthday"},
		"edit_phone":      {"email", "address", "birthday"},
		"add_note":        {"tag"},
		"search_contacts": {"name", "phone", "email"},
	}
}
