package model

import (
	"guide/shared/model"
)

const (
	TableName  = "auth_users"
	EntityName = "auth_user"

	FieldID       = "id"
	FieldEmail    = "email"
	FieldProvider = "provider"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// AuthUser is the credential principal behind a profile. OAuth principals
// carry no password hash.
type AuthUser struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Provider     string `db:"provider"`
	model.Metadata
}
