package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account stored in the users collection. Username and email are
// unique; Password holds a bcrypt hash once stored.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username  string             `bson:"username,omitempty" json:"username"`
	Email     string             `bson:"email,omitempty" json:"email"`
	Password  string             `bson:"password,omitempty" json:"password,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty" json:"updatedAt"`
	Version   int32              `bson:"__v" json:"__v"`

	// Self is the canonical URL of the document, set only on responses.
	Self string `bson:"-" json:"_self,omitempty"`
}

func (u User) Key() string { return u.ID.Hex() }

func (u User) WithSelf(href string) User {
	u.Self = href
	return u
}

// UserPatch is a partial update; nil fields are left unchanged.
type UserPatch struct {
	Username *string `bson:"username,omitempty" json:"username,omitempty"`
	Email    *string `bson:"email,omitempty" json:"email,omitempty"`
	Password *string `bson:"password,omitempty" json:"password,omitempty"`
}

// Credentials is the body accepted by the verify endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Collection and field names used by the user store.
const (
	UserCollection = "users"
	FieldUsername  = "username"
	FieldEmail     = "email"
	FieldPassword  = "password"
)
