package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostKind discriminates the three kinds of post that share the posts table.
type PostKind string

const (
	KindAnswer    PostKind = "answer"
	KindFlashcard PostKind = "flashcard"
	KindLongForm  PostKind = "post"
)

// KindFromFlags maps the wire-level discriminator booleans to a kind. ok is
// false when both are set.
func KindFromFlags(flashcard, post bool) (kind PostKind, ok bool) {
	switch {
	case flashcard && post:
		return "", false
	case flashcard:
		return KindFlashcard, true
	case post:
		return KindLongForm, true
	default:
		return KindAnswer, true
	}
}

func (k PostKind) Valid() bool {
	switch k {
	case KindAnswer, KindFlashcard, KindLongForm:
		return true
	}
	return false
}

// HasTitle reports whether posts of this kind carry a title and tags.
func (k PostKind) HasTitle() bool {
	return k == KindFlashcard || k == KindLongForm
}

type Post struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Kind       PostKind   `json:"kind" gorm:"type:text;not null;index"`
	QuestionID *uuid.UUID `json:"question,omitempty" gorm:"type:uuid;index"`
	Title      *string    `json:"title,omitempty" gorm:"type:text"`
	Body       string     `json:"body" gorm:"type:text;not null"`
	ReadTime   *string    `json:"readtime,omitempty" gorm:"column:read_time;type:text"`
	AuthorUID  string     `json:"author" gorm:"type:text;not null;index"`
	Deleted    bool       `json:"deleted" gorm:"not null;default:false;index"`
	Edited     bool       `json:"edited" gorm:"not null;default:false"`
	Tags       []PostTag  `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p Post) TagValues() []string {
	return tagValues(p.Tags, func(t PostTag) (int, string) { return t.Position, t.Value })
}

type PostTag struct {
	PostID   uuid.UUID `json:"postId" gorm:"type:uuid;primaryKey;autoIncrement:false"`
	Position int       `json:"position" gorm:"primaryKey;autoIncrement:false"`
	Value    string    `json:"value" gorm:"type:text;not null;index"`
}

func NewPostTags(values []string) []PostTag {
	tags := make([]PostTag, 0, len(values))
	for i, v := range values {
		tags = append(tags, PostTag{Position: i, Value: v})
	}
	return tags
}

// PostLike is one member of a post's liker set.
type PostLike struct {
	PostID    uuid.UUID `json:"postId" gorm:"type:uuid;primaryKey;autoIncrement:false"`
	UserUID   string    `json:"userUid" gorm:"type:text;primaryKey;index"`
	CreatedAt time.Time `json:"createdAt"`
}

type PostPatch struct {
	Title    *string
	Body     *string
	ReadTime *string
	Tags     *[]string
}

func (p PostPatch) Empty() bool {
	return p.Title == nil && p.Body == nil && p.ReadTime == nil && p.Tags == nil
}
