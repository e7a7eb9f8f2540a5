package dispatch

import (
	"errors"

	"github.com/siherrmann/hybridnlu/helper"
	"github.com/siherrmann/hybridnlu/model"
)

// CommandPipeline is the command name telling the caller to run a multi-step pipeline.
const CommandPipeline = "pipeline"

const defaultCommand = "help"

// intentToCommand maps intent labels to command names.
var intentToCommand = map[string]string{
	"add_contact":         "add",
	"edit_phone":          "change",
	"edit_email":          "edit-email",
	"edit_address":        "edit-address",
	"delete_contact":      "delete-contact",
	"list_all_contacts":   "all",
	"search_contacts":     "search",
	"add_birthday":        "add-birthday",
	"list_birthdays":      "birthdays",
	"add_note":            "add-note",
	"edit_note":           "edit-note",
	"remove_note":         "delete-note",
	"delete_note":         "delete-note",
	"show_notes":          "show-notes",
	"add_note_tag":        "add-tag",
	"remove_note_tag":     "remove-tag",
	"search_notes_text":   "search-notes",
	"search_notes_by_tag": "search-by-tag",
	"hello":               "hello",
	"help":                "help",
	"exit":                "exit",
	"show_phone":          "phone",
	"add_email":           "add-email",
	"remove_email":        "remove-email",
	"add_address":         "add-address",
	"remove_address":      "remove-address",
	"show_birthday":       "show-birthday",
}

// pipelineSkip lists intents that never become a pipeline even with optional fields.
var pipelineSkip = map[string]bool{
	"list_birthdays": true,
}

// argFields lists the entity fields passed as positional arguments per intent.
var argFields = map[string][]string{
	"add_contact":         {"name", "phone"},
	"edit_email":          {"name", "email"},
	"edit_address":        {"name", "address"},
	"delete_contact":      {"name"},
	"add_birthday":        {"name", "birthday"},
	"add_note":            {"note_text"},
	"edit_note":           {"id", "note_text"},
	"remove_note":         {"id"},
	"delete_note":         {"id"},
	"add_note_tag":        {"id", "tag"},
	"remove_note_tag":     {"id", "tag"},
	"search_notes_text":   {"note_text"},
	"search_notes_by_tag": {"tag"},
	"add_email":           {"name", "email"},
	"remove_email":        {"name"},
	"add_address":         {"name", "address"},
	"remove_address":      {"name"},
	"show_phone":          {"name"},
	"show_birthday":       {"name"},
}

// Command is a resolved command. For CommandPipeline, Result carries the NLU
// result the pipeline steps are built from.
type Command struct {
	Name   string
	Args   []string
	Result *model.NLUResult
}

// IsPipeline reports whether the command must be expanded with BuildCommandPipeline.
func (c Command) IsPipeline() bool {
	return c.Name == CommandPipeline
}

// CommandFor returns the command of intent, or help for unknown intents.
func CommandFor(intent string) string {
	if command, ok := intentToCommand[intent]; ok {
		return command
	}
	return defaultCommand
}

// GetCommandArgs maps an NLU result to a command and its positional arguments.
// Results with optional fields present become a pipeline command.
func GetCommandArgs(result *model.NLUResult) (Command, error) {
	if result == nil {
		return Command{}, helper.NewError("get command args", errors.New("nil result"))
	}

	if result.Validation.HasOptional && !pipelineSkip[result.Intent] {
		return Command{Name: CommandPipeline, Args: []string{}, Result: result}, nil
	}

	entities := result.Entities.ForDispatch()
	return Command{
		Name: CommandFor(result.Intent),
		Args: buildArgs(result.Intent, entities),
	}, nil
}

func buildArgs(intent string, entities model.EntityMap) []string {
	args := []string{}

	switch intent {
	case "edit_phone":
		args = appendPresent(args, entities, "name", "old_phone")
		if entities.Has("new_phone") {
			args = append(args, entities["new_phone"])
		} else if entities.Has("phone") {
			args = append(args, entities["phone"])
		}
	case "search_contacts":
		for _, field := range []string{"name", "phone", "email"} {
			if entities.Has(field) {
				args = append(args, entities[field])
				break
			}
		}
	case "list_birthdays":
		days := entities["days"]
		if days == "" {
			days = "7"
		}
		args = append(args, days)
	default:
		args = appendPresent(args, entities, argFields[intent]...)
	}

	return args
}

func appendPresent(args []string, entities model.EntityMap, fields ...string) []string {
	for _, field := range fields {
		if entities.Has(field) {
			args = append(args, entities[field])
		}
	}
	return args
}
