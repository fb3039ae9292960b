package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account record, the credential holder of the system.
// PasswordHash carries a bcrypt hash, never the plaintext, and is omitted
// from JSON output.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Avatar       string             `bson:"avatar" json:"avatar"`
	Date         time.Time          `bson:"date" json:"date"`
}

// Owner is the name/avatar slice of a User attached to records that
// reference their owning account.
type Owner struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Avatar string             `json:"avatar"`
}
