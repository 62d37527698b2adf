package models

// Upload remembers who put an object into the bucket.
type Upload struct {
	BaseModel

	Key         string `json:"key" gorm:"column:object_key;uniqueIndex;size:256"`
	Profile     string `json:"profile" gorm:"size:32"`
	ContentType string `json:"content_type" gorm:"size:64"`
	Size        int64  `json:"size"`
	UserID      uint   `json:"user_id" gorm:"index"`
}
