package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/hybridnlu"
	"github.com/siherrmann/hybridnlu/helper"
)

var utterances = []string{
	"add contact Jane Doe 650-253-0000",
	"show the phone of Jane",
	"list birthdays in the next 30 days",
	"search notes tagged #work",
	"add note buy milk",
}

func main() {
	// Start a test PostgreSQL container for the utterance log
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	// Model directories and region come from HYBRIDNLU_* variables
	nlu, err := hybridnlu.NewHybridNLUFromEnv()
	if err != nil {
		log.Fatalf("Failed to create hybrid NLU: %v", err)
	}
	defer nlu.Shutdown()

	// Downloads all-MiniLM-L6-v2 on first use
	if err := nlu.UseDefaultUtteranceLog(dbConfig); err != nil {
		log.Fatalf("Failed to set up utterance log: %v", err)
	}

	results, err := nlu.ProcessBatch(context.Background(), utterances, false)
	if err != nil {
		log.Fatalf("Failed to process batch: %v", err)
	}
	for i, result := range results {
		command, err := nlu.GetCommandArgs(result)
		if err != nil {
			log.Fatalf("Failed to map command: %v", err)
		}
		fmt.Printf("%-40q %-20s %.2f -> %s %v\n", utterances[i], result.Intent, result.Confidence, command.Name, command.Args)
	}

	query := "what is Jane's number"
	fmt.Printf("\nUtterances similar to %q:\n", query)
	similar, err := nlu.SimilarUtterances(query, 3, 0.3)
	if err != nil {
		log.Fatalf("Failed to search similar utterances: %v", err)
	}
	for _, u := range similar {
		fmt.Printf("  %.3f  %-20s %s\n", u.Similarity, u.Intent, u.Text)
	}

	history, err := nlu.History(10)
	if err != nil {
		log.Fatalf("Failed to read history: %v", err)
	}
	fmt.Printf("\n%d utterances logged\n", len(history))
}
