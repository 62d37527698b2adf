package models

import "time"

const (
	UserRoleAdmin  = "admin"
	UserRoleEditor = "editor"
	UserRoleUser   = "user"
)

var UserRoles = []string{UserRoleAdmin, UserRoleEditor, UserRoleUser}

type User struct {
	BaseModel

	Email       string     `json:"email" gorm:"uniqueIndex;size:255"`
	Username    string     `json:"username" gorm:"uniqueIndex;size:64"`
	Password    string     `json:"-"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Avatar      *string    `json:"avatar"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	PostCount   int64      `json:"post_count"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

func (v User) IsAdmin() bool {
	return v.Role == UserRoleAdmin
}

type RefreshToken struct {
	BaseModel

	// TokenHash holds the sha256 of the opaque token handed to the client.
	TokenHash string     `json:"-" gorm:"uniqueIndex;size:64"`
	UserID    uint       `json:"user_id" gorm:"index"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`
	IPAddress string     `json:"ip_address"`
	UserAgent string     `json:"user_agent"`
}

type UserActivity struct {
	BaseModel

	UserID    uint   `json:"user_id" gorm:"index"`
	Action    string `json:"action" gorm:"index"`
	Target    string `json:"target"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}
