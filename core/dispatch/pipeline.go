package dispatch

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/siherrmann/hybridnlu/helper"
	"github.com/siherrmann/hybridnlu/model"
)

// Step conditions checked by Execute before a step runs.
// ConditionIfSingleResult looks at the output of the previous step;
// ConditionIfNotExists asks an ExistenceChecker handler.
const (
	ConditionIfNotExists    = "if_not_exists"
	ConditionIfSingleResult = "if_single_result"
)

var (
	noteIDPattern      = regexp.MustCompile(`ID:\s*(\d+)`)
	resultCountPattern = regexp.MustCompile(`(?i)\b(\d+)\s+(?:contacts?|results?|matches|notes?)\b`)
	noResultPattern    = regexp.MustCompile(`(?i)\b(?:no|zero)\s+(?:contacts?|results?|matches|notes?)\b|\bnot\s+found\b`)
)

// CommandHandler executes commands of the contact and notes domain.
type CommandHandler interface {
	Handle(command string, args []string) (string, error)
}

// ExistenceChecker is implemented by handlers that can tell whether the value
// a step would add is already stored. Without it if_not_exists steps always run.
type ExistenceChecker interface {
	Exists(command string, args []string) (bool, error)
}

// HandlerFunc adapts a function to the CommandHandler interface.
type HandlerFunc func(command string, args []string) (string, error)

func (f HandlerFunc) Handle(command string, args []string) (string, error) {
	return f(command, args)
}

// Step is one command of a command pipeline.
type Step struct {
	Command           string
	Args              []string
	Primary           bool
	Condition         string
	NoteIDFromPrimary bool
}

type stepDefinition struct {
	command           string
	entity            string
	condition         string
	noteIDFromPrimary bool
}

type pipelineDefinition struct {
	primaryCommand  string
	primaryRequired []string
	steps           []stepDefinition
}

// pipelineDefinitions lists the intents that expand into several commands.
var pipelineDefinitions = map[string]pipelineDefinition{
	"add_contact": {
		primaryCommand:  "add",
		primaryRequired: []string{"name", "phone"},
		steps: []stepDefinition{
			{command: "add-email", entity: "email"},
			{command: "add-address", entity: "address"},
			{command: "add-birthday", entity: "birthday"},
		},
	},
	"edit_phone": {
		primaryCommand:  "change",
		primaryRequired: []string{"name", "phone"},
		steps: []stepDefinition{
			{command: "add-email", entity: "email", condition: ConditionIfNotExists},
			{command: "add-address", entity: "address", condition: ConditionIfNotExists},
			{command: "add-birthday", entity: "birthday", condition: ConditionIfNotExists},
		},
	},
	"add_note": {
		primaryCommand:  "add-note",
		primaryRequired: []string{"note_text"},
		steps: []stepDefinition{
			{command: "add-tag", entity: "tag", noteIDFromPrimary: true},
		},
	},
	"search_contacts": {
		primaryCommand: "search",
		steps: []stepDefinition{
			{command: "phone", entity: "name", condition: ConditionIfSingleResult},
		},
	},
}

// contactSteps take the contact name of the primary command as first argument.
var contactSteps = map[string]bool{
	"add-email":    true,
	"add-address":  true,
	"add-birthday": true,
	"edit-email":   true,
	"edit-address": true,
}

// BuildCommandPipeline expands result into the primary command followed by
// one step per present optional field. Intents without a definition give no steps.
func BuildCommandPipeline(result *model.NLUResult) []Step {
	if result == nil {
		return nil
	}
	def, ok := pipelineDefinitions[result.Intent]
	if !ok {
		return nil
	}

	entities := result.Entities.ForDispatch()
	primaryArgs := appendPresent([]string{}, entities, def.primaryRequired...)
	steps := []Step{{Command: def.primaryCommand, Args: primaryArgs, Primary: true}}

	for _, sd := range def.steps {
		if !entities.Has(sd.entity) {
			continue
		}

		args := []string{}
		if contactSteps[sd.command] && len(primaryArgs) > 0 {
			args = append(args, primaryArgs[0])
		}
		args = append(args, entities[sd.entity])

		steps = append(steps, Step{
			Command:           sd.command,
			Args:              args,
			Condition:         sd.condition,
			NoteIDFromPrimary: sd.noteIDFromPrimary,
		})
	}

	return steps
}

// Execute runs command with handler and returns the output of every executed command.
// Pipeline commands run their steps in order; the first failing step stops the run.
func Execute(handler CommandHandler, command Command) ([]string, error) {
	if !command.IsPipeline() {
		out, err := handler.Handle(command.Name, command.Args)
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("handle %s", command.Name), err)
		}
		return []string{out}, nil
	}

	steps := BuildCommandPipeline(command.Result)
	if len(steps) == 0 {
		return nil, helper.NewError("execute pipeline", errors.New("no pipeline for intent"))
	}

	var outputs []string
	var noteID, previous string
	for _, step := range steps {
		args := step.Args
		if step.NoteIDFromPrimary {
			if noteID == "" {
				continue
			}
			args = append([]string{noteID}, args...)
		}

		run, err := conditionMet(handler, step, args, previous)
		if err != nil {
			return outputs, helper.NewError(fmt.Sprintf("check %s", step.Command), err)
		}
		if !run {
			continue
		}

		out, err := handler.Handle(step.Command, args)
		if err != nil {
			return outputs, helper.NewError(fmt.Sprintf("handle %s", step.Command), err)
		}
		outputs = append(outputs, out)
		previous = out

		if step.Primary {
			noteID = ExtractNoteID(out)
		}
	}

	return outputs, nil
}

func conditionMet(handler CommandHandler, step Step, args []string, previous string) (bool, error) {
	switch step.Condition {
	case ConditionIfSingleResult:
		return ResultCount(previous) == 1, nil
	case ConditionIfNotExists:
		checker, ok := handler.(ExistenceChecker)
		if !ok {
			return true, nil
		}
		exists, err := checker.Exists(step.Command, args)
		return !exists, err
	default:
		return true, nil
	}
}

// ResultCount reads the number of results from a command output.
// An explicit count such as "Found 3 contacts" wins, "No contacts found" is zero,
// otherwise every non-empty line counts as one result.
func ResultCount(output string) int {
	if m := resultCountPattern.FindStringSubmatch(output); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	if noResultPattern.MatchString(output) {
		return 0
	}

	count := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// ExtractNoteID finds the note id in a command output such as "Note added with ID: 1".
func ExtractNoteID(output string) string {
	if m := noteIDPattern.FindStringSubmatch(output); m != nil {
		return m[1]
	}
	return ""
}

// Summary renders the steps as a numbered list.
func Summary(steps []Step) string {
	if len(steps) <= 1 {
		return ""
	}
	summary := "Pipeline:"
	for i, step := range steps {
		summary += fmt.Sprintf("\n%d. %s", i+1, step.Command)
		for _, arg := range step.Args {
			summary += " " + arg
		}
	}
	return summary
}
