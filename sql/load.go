package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed utterances.sql
var utterancesSQL string

// UtterancesFunctions lists the functions created by utterances.sql.
var UtterancesFunctions = []string{
	"init_utterances",
	"insert_utterance",
	"select_utterance",
	"select_utterances_by_intent",
	"select_recent_utterances",
	"select_utterances_by_similarity",
	"delete_utterance",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadUtterancesSql loads utterance-related SQL functions.
// Without force it is a no-op when all functions already exist.
func LoadUtterancesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, UtterancesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing utterances functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(utterancesSQL)
	if err != nil {
		return fmt.Errorf("error executing utterances SQL: %w", err)
	}

	exist, err := checkFunctions(db, UtterancesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL utterances functions loaded successfully")
	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
