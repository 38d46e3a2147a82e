package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/postservice/internal/model"
)

// setupTestDB 单连接内存库：:memory: 每个连接是独立的库
func setupTestDB(t *testing.T) (*gorm.DB, *sqlx.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, NewPostRepository(db).InitSchema())
	return db, sqlx.NewDb(sqlDB, "sqlite3")
}

type fixtures struct {
	tech, travel, food model.Category
	published, draft   model.Status
}

func seedLookups(t *testing.T, db *gorm.DB) fixtures {
	t.Helper()
	f := fixtures{
		tech:      model.Category{Name: "Tech"},
		travel:    model.Category{Name: "Travel"},
		food:      model.Category{Name: "Food & Drink"},
		published: model.Status{Status: "publish"},
		draft:     model.Status{Status: "draft"},
	}
	for _, c := range []*model.Category{&f.tech, &f.travel, &f.food} {
		require.NoError(t, db.Create(c).Error)
	}
	for _, s := range []*model.Status{&f.published, &f.draft} {
		require.NoError(t, db.Create(s).Error)
	}
	return f
}

var baseDate = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// seedPosts 插入 n 篇文章，日期按分钟递增
func seedPosts(t *testing.T, db *gorm.DB, n int, categoryID, statusID int64, title string) []model.Post {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Post{}).Count(&count).Error)

	posts := make([]model.Post, n)
	for i := range posts {
		posts[i] = model.Post{
			Title:       fmt.Sprintf("%s %d", title, i),
			Image:       "https://example.com/img.png",
			CategoryID:  categoryID,
			Description: "description",
			Content:     "content",
			StatusID:    statusID,
			Date:        baseDate.Add(time.Duration(int(count)+i) * time.Minute),
		}
	}
	require.NoError(t, db.Create(&posts).Error)
	return posts
}
