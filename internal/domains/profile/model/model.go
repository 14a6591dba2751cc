package model

import (
	"guide/shared/model"
)

const (
	TableName  = "profiles"
	EntityName = "profile"

	FieldID       = "id"
	FieldAuthUID  = "auth_uid"
	FieldFullName = "full_name"
	FieldRole     = "role"
	FieldCity     = "city"
	FieldBio      = "bio"
	FieldVerified = "verified"
)

type Profile struct {
	ID       string `db:"id"`
	AuthUID  string `db:"auth_uid"`
	FullName string `db:"full_name"`
	Role     string `db:"role"`
	City     string `db:"city"`
	Bio      string `db:"bio"`
	Verified bool   `db:"verified"`
	model.Metadata
}
