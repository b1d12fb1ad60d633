package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the local profile of an identity-provider account.
type User struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey;not null"`
	UID         string                      `json:"uid" gorm:"type:text;not null;uniqueIndex"`
	Name        string                      `json:"name" gorm:"type:text;not null"`
	Prefix      *string                     `json:"prefix,omitempty" gorm:"type:text"`
	Email       *string                     `json:"email,omitempty" gorm:"type:text"`
	PhoneNumber string                      `json:"phoneNumber" gorm:"type:text;not null"`
	PhotoURL    *string                     `json:"photoURL,omitempty" gorm:"column:photo_url;type:text"`
	Interests   datatypes.JSONSlice[string] `json:"interests"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// LegacyProfile is a read-only record of the directory that predates
// identity-provider accounts. Profiles are matched by phone number.
type LegacyProfile struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey;not null"`
	PhoneNumber string                      `json:"phoneNumber" gorm:"type:text;not null;uniqueIndex"`
	Name        string                      `json:"name" gorm:"type:text;not null"`
	Email       *string                     `json:"email,omitempty" gorm:"type:text"`
	Profile     *string                     `json:"profile,omitempty" gorm:"type:text"`
	Prefix      *string                     `json:"prefix,omitempty" gorm:"type:text"`
	Interests   datatypes.JSONSlice[string] `json:"interests,omitempty"`
	Interest    *string                     `json:"interest,omitempty" gorm:"type:text"`
}

func (LegacyProfile) TableName() string {
	return "legacy_users"
}

func (p *LegacyProfile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProfileInterests prefers the interest list and falls back to the single
// legacy interest.
func (p LegacyProfile) ProfileInterests() []string {
	if p.Interests != nil {
		return []string(p.Interests)
	}
	if p.Interest != nil && *p.Interest != "" {
		return []string{*p.Interest}
	}
	return []string{}
}
