package model

import "time"

// Post 文章
type Post struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"type:text;not null"`
	Image       string    `json:"image" gorm:"type:text;not null"`
	CategoryID  int64     `json:"category_id" gorm:"not null;index"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	StatusID    int64     `json:"status_id" gorm:"not null;index"`
	Date        time.Time `json:"date" gorm:"not null;index;default:CURRENT_TIMESTAMP"`
	LikesCount  int       `json:"likes_count" gorm:"not null;default:0"`

	Category *Category `json:"-" gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Status   *Status   `json:"-" gorm:"foreignKey:StatusID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (Post) TableName() string { return "posts" }

// PostInput 创建/更新时可写的六个字段
type PostInput struct {
	Title       string `json:"title"`
	Image       string `json:"image"`
	CategoryID  int64  `json:"category_id"`
	Description string `json:"description"`
	Content     string `json:"content"`
	StatusID    int64  `json:"status_id"`
}

// Columns 可写字段到列名的映射，供整行更新使用
func (in PostInput) Columns() map[string]interface{} {
	return map[string]interface{}{
		"title":       in.Title,
		"image":       in.Image,
		"category_id": in.CategoryID,
		"description": in.Description,
		"content":     in.Content,
		"status_id":   in.StatusID,
	}
}

// ListedPost 列表投影：关联出分类名与状态名
type ListedPost struct {
	ID          int64     `json:"id" db:"id"`
	Image       string    `json:"image" db:"image"`
	Category    string    `json:"category" db:"category"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Date        time.Time `json:"date" db:"date"`
	Content     string    `json:"content" db:"content"`
	Status      string    `json:"status" db:"status"`
	LikesCount  int       `json:"likes_count" db:"likes_count"`
}
