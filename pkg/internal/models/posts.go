package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

var PostStatuses = []string{PostStatusDraft, PostStatusPublished, PostStatusArchived}

type Post struct {
	BaseModel

	Title     string  `json:"title"`
	Slug      string  `json:"slug" gorm:"uniqueIndex;size:100"`
	Content   string  `json:"content"`
	Excerpt   *string `json:"excerpt"`
	Thumbnail *string `json:"thumbnail"`
	Language  string  `json:"language"`

	CategoryID uint      `json:"category_id" gorm:"index:idx_posts_category_status,priority:1"`
	Category   *Category `json:"category,omitempty"`
	Tags       []Tag     `json:"tags" gorm:"many2many:post_tags"`
	AuthorID   uint      `json:"author_id" gorm:"index:idx_posts_author_status,priority:1"`
	Author     *User     `json:"author,omitempty"`

	RelatedProducts datatypes.JSONSlice[RelatedProduct] `json:"related_products"`

	Status       string     `json:"status" gorm:"index:idx_posts_status_date,priority:1;index:idx_posts_category_status,priority:2;index:idx_posts_author_status,priority:2"`
	PublishedAt  *time.Time `json:"published_at" gorm:"index:idx_posts_status_date,priority:2"`
	ViewCount    int64      `json:"view_count"`
	LikeCount    int64      `json:"like_count"`
	CommentCount int64      `json:"comment_count"`
	IsFeatured   bool       `json:"is_featured" gorm:"index"`
	IsSticky     bool       `json:"is_sticky"`
}

// RelatedProduct is a copy of a catalog record taken when the post was written.
// It is not kept in sync with the catalog afterwards.
type RelatedProduct struct {
	Name       string   `json:"name"`
	URLKey     string   `json:"url_key"`
	ImageURL   string   `json:"image_url"`
	Price      float64  `json:"price"`
	Currency   string   `json:"currency"`
	SalePrice  *float64 `json:"sale_price,omitempty"`
	ProductURL *string  `json:"product_url,omitempty"`
}
