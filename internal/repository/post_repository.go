package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/postservice/internal/model"
)

// ErrNotFound 指定 ID 的文章不存在
var ErrNotFound = errors.New("post not found")

// PostRepository 文章仓储接口
type PostRepository interface {
	// Create 插入文章，返回带存储生成 ID 与日期的记录
	Create(ctx context.Context, in model.PostInput) (*model.Post, error)

	// GetByID 根据 ID 查询文章
	GetByID(ctx context.Context, id int64) (*model.Post, error)

	// Update 整体替换六个可写字段
	Update(ctx context.Context, id int64, in model.PostInput) error

	// Delete 删除文章
	Delete(ctx context.Context, id int64) error

	// Close 关闭数据库连接
	Close() error
}

// GormPostRepository 基于 gorm 的文章仓储实现
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建文章仓储
func NewPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) Create(ctx context.Context, in model.PostInput) (*model.Post, error) {
	post := &model.Post{
		Title:       in.Title,
		Image:       in.Image,
		CategoryID:  in.CategoryID,
		Description: in.Description,
		Content:     in.Content,
		StatusID:    in.StatusID,
	}
	if err := r.db.WithContext(ctx).Omit("Category", "Status").Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (r *GormPostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update 存在性检查与更新在同一事务内执行，避免并发删除后仍报告成功
func (r *GormPostRepository) Update(ctx context.Context, id int64, in model.PostInput) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, id); err != nil {
			return err
		}
		res := tx.Model(&model.Post{}).Where("id = ?", id).Updates(in.Columns())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Delete 与 Update 相同的检查后删除，同样包在事务内
func (r *GormPostRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, id); err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func exists(tx *gorm.DB, id int64) error {
	var cnt int64
	if err := tx.Model(&model.Post{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}

// Close 关闭数据库连接
func (r *GormPostRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema 初始化数据库表结构
func (r *GormPostRepository) InitSchema() error {
	if err := r.db.AutoMigrate(&model.Category{}, &model.Status{}, &model.Post{}); err != nil {
		return fmt.Errorf("failed to migrate posts schema: %w", err)
	}
	return nil
}
