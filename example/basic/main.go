package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/siherrmann/hybridnlu"
	"github.com/siherrmann/hybridnlu/core/dispatch"
	"github.com/siherrmann/hybridnlu/model"
)

var utterances = []string{
	"hello",
	"add contact John Smith 650-253-0000 john@example.com",
	"add birthday 15.03.1990 to John",
	"add note \"call the dentist\" #health",
	"show all notes",
	"#work",
}

func main() {
	// Without model directories the keyword classifier and the regex extractors are used
	nlu, err := hybridnlu.NewHybridNLU(model.DefaultNLUConfig())
	if err != nil {
		log.Fatalf("Failed to create hybrid NLU: %v", err)
	}
	defer nlu.Shutdown()

	// A handler that only prints what it would do
	notes := 0
	handler := dispatch.HandlerFunc(func(command string, args []string) (string, error) {
		if command == "add-note" {
			notes++
			return fmt.Sprintf("Note added with ID: %d", notes), nil
		}
		return fmt.Sprintf("%s %s", command, strings.Join(args, " ")), nil
	})

	for _, text := range utterances {
		result, err := nlu.Process(context.Background(), text, false)
		if err != nil {
			log.Fatalf("Failed to process %q: %v", text, err)
		}

		fmt.Printf("\n%q\n", text)
		fmt.Printf("  intent: %s (%.2f, %s)\n", result.Intent, result.Confidence, result.Raw.Source)
		for k, v := range result.Entities.ForDispatch() {
			fmt.Printf("  %s: %s\n", k, v)
		}
		if !result.Validation.Valid {
			fmt.Printf("  missing: %v\n", result.Validation.Missing)
		}

		outputs, err := nlu.Dispatch(handler, result)
		if err != nil {
			fmt.Printf("  dispatch failed: %v\n", err)
			continue
		}
		for _, out := range outputs {
			fmt.Printf("  -> %s\n", out)
		}
	}
}
