package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusRejected = "rejected"
	CommentStatusSpam     = "spam"
)

var CommentStatuses = []string{
	CommentStatusPending,
	CommentStatusApproved,
	CommentStatusRejected,
	CommentStatusSpam,
}

type Comment struct {
	BaseModel

	Content  string `json:"content"`
	PostID   uint   `json:"post_id" gorm:"index:idx_comments_post_status,priority:1"`
	ParentID *uint  `json:"parent_id" gorm:"index"`

	ExternalUserID string                      `json:"external_user_id" gorm:"index"`
	AuthorName     string                      `json:"author_name"`
	AuthorEmail    string                      `json:"-"`
	AuthorAvatar   *string                     `json:"author_avatar"`
	AuthorRanking  datatypes.JSONSlice[string] `json:"author_ranking"`

	Status           string     `json:"status" gorm:"index:idx_comments_post_status,priority:2"`
	ModerationReason *string    `json:"moderation_reason,omitempty"`
	ModeratedBy      *uint      `json:"moderated_by,omitempty"`
	ModeratedAt      *time.Time `json:"moderated_at,omitempty"`

	LikeCount  int64      `json:"like_count"`
	ReplyCount int64      `json:"reply_count"`
	IsEdited   bool       `json:"is_edited"`
	EditedAt   *time.Time `json:"edited_at,omitempty"`

	IPAddress string `json:"-"`
	UserAgent string `json:"-"`

	Replies []Comment `json:"replies,omitempty" gorm:"-"`
}

// ExternalIdentity is the commenter profile returned by the identity provider.
type ExternalIdentity struct {
	Email        string   `json:"email"`
	Firstname    string   `json:"firstname"`
	Lastname     string   `json:"lastname"`
	Middlename   *string  `json:"middlename"`
	MobileNumber *string  `json:"mobile_number"`
	Picture      *string  `json:"picture"`
	Ranking      []string `json:"ranking"`
}
