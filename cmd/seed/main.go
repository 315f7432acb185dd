// Command seed loads users from a JSON file into the configured store, or
// purges the users collection. It reads the same environment as the server.
package main

import (
	"context"
	"os"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/config"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/database"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/users"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer func() { _ = logger.Sync() }()

	if err := newRootCmd(openService).Execute(); err != nil {
		os.Exit(1)
	}
}

// openService builds the user service from the environment. The returned
// closer releases the store connection.
func openService(ctx context.Context) (*users.Service, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)

	var conn *database.Connector
	if cfg.Store.Driver == "mongo" {
		conn = database.NewConnector(cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.Timeout)
		if err := conn.Ping(ctx); err != nil {
			return nil, nil, err
		}
	}
	repo, err := users.NewUserRepository(cfg.Store.Driver, conn)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if conn != nil {
			if err := conn.Close(context.Background()); err != nil {
				logger.Warnf("mongo disconnect: %v", err)
			}
		}
	}
	return users.NewService(repo, users.NewHasher(cfg.Security.BcryptCost)), closer, nil
}
