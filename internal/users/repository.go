package users

import (
	"fmt"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/database"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/models"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/store"
)

// UserRepository defines persistence operations for users
type UserRepository = store.Store[models.User]

// NewMongoUserRepository binds the users collection with unique username and email indexes.
func NewMongoUserRepository(conn *database.Connector) *store.Mongo[models.User] {
	return store.NewMongo[models.User](conn, models.UserCollection, models.FieldUsername, models.FieldEmail)
}

// NewMemoryUserRepository is the in-process equivalent used by tests and the memory driver.
func NewMemoryUserRepository() *store.Memory[models.User] {
	return store.NewMemory[models.User](models.FieldUsername, models.FieldEmail)
}

// NewUserRepository picks the backend named by driver ("mongo" or "memory").
func NewUserRepository(driver string, conn *database.Connector) (UserRepository, error) {
	switch driver {
	case "mongo":
		if conn == nil {
			return nil, fmt.Errorf("mongo driver requires a connector")
		}
		return NewMongoUserRepository(conn), nil
	case "memory":
		return NewMemoryUserRepository(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
