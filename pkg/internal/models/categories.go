package models

type Tag struct {
	BaseModel

	Name        string `json:"name"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:128"`
	Description string `json:"description"`
	PostCount   int64  `json:"post_count" gorm:"index"`
	IsActive    bool   `json:"is_active" gorm:"index"`
	Posts       []Post `json:"posts,omitempty" gorm:"many2many:post_tags"`
}

type Category struct {
	BaseModel

	Name        string  `json:"name"`
	Slug        string  `json:"slug" gorm:"uniqueIndex;size:128"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
	ParentID    *uint   `json:"parent_id" gorm:"index"`
	Order       int     `json:"order" gorm:"column:sort_order"`
	IsActive    bool    `json:"is_active" gorm:"index"`
	PostCount   int64   `json:"post_count"`

	// Children is derived from the parent_id reverse lookup, never persisted.
	Children []*Category `json:"children,omitempty" gorm:"-"`
}
