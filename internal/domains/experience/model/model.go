package model

import (
	"fmt"

	profileModel "guide/internal/domains/profile/model"
	"guide/shared/model"
)

const (
	TableName  = "experiences"
	EntityName = "experience"

	FieldID            = "id"
	FieldHostID        = "host_id"
	FieldTitle         = "title"
	FieldCity          = "city"
	FieldPrice         = "price"
	FieldContactMethod = "contact_method"
	FieldPublished     = "published"
	FieldImageURL      = "image_url"
)

type Experience struct {
	ID            string `db:"id"`
	HostID        string `db:"host_id"`
	Title         string `db:"title"`
	Description   string `db:"description"`
	City          string `db:"city"`
	Price         string `db:"price"`
	ContactMethod string `db:"contact_method"`
	Published     bool   `db:"published"`
	ImageURL      string `db:"image_url"`
	ImageAltText  string `db:"image_alt_text"`

	HostName     string `db:"host_name"     table:"profiles" column:"full_name"`
	HostVerified bool   `db:"host_verified" table:"profiles" column:"verified"`
	model.Metadata
}

func (Experience) GetJoinQuery() string {
	return fmt.Sprintf(
		"LEFT JOIN %s ON %s.%s = %s.%s",
		profileModel.TableName,
		TableName, FieldHostID,
		profileModel.TableName, profileModel.FieldID,
	)
}
