package database

import (
	"context"
	"log"
	"testing"

	"github.com/siherrmann/hybridnlu/helper"
	"github.com/siherrmann/hybridnlu/sql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

var dbPort string

func TestMain(m *testing.M) {
	var teardown func(ctx context.Context, opts ...testcontainers.TerminateOption) error
	var err error
	teardown, dbPort, err = helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}

	code := m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("error tearing down postgres container: %v", err)
		}
	}
	if code != 0 {
		log.Fatalf("tests failed with code %d", code)
	}
}

func initDB(t *testing.T) *helper.Database {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")
	database := helper.NewTestDatabase(dbConfig)
	t.Cleanup(func() { _ = database.Instance.Close() })

	err = sql.Init(database.Instance)
	require.NoError(t, err)

	return database
}
