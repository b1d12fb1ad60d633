package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;not null"`
	PostID    uuid.UUID  `json:"post" gorm:"type:uuid;not null;index"`
	ParentID  *uuid.UUID `json:"parentComment,omitempty" gorm:"type:uuid;index"`
	Body      string     `json:"body" gorm:"type:text;not null"`
	AuthorUID string     `json:"author" gorm:"type:text;not null;index"`
	Deleted   bool       `json:"deleted" gorm:"not null;default:false;index"`
	Edited    bool       `json:"edited" gorm:"not null;default:false"`
	CreatedAt time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CommentPatch struct {
	Body *string
}

func (p CommentPatch) Empty() bool {
	return p.Body == nil
}
