package model

// Category 分类，仅被文章引用
type Category struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"type:text;not null;uniqueIndex"`
}

func (Category) TableName() string { return "categories" }

// Status 发布状态，如 draft / publish
type Status struct {
	ID     int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Status string `json:"status" gorm:"type:text;not null;uniqueIndex"`
}

func (Status) TableName() string { return "statuses" }
