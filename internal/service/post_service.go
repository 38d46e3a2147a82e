package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/postservice/internal/cache"
	"github.com/d60-Lab/postservice/internal/model"
	"github.com/d60-Lab/postservice/internal/repository"
	"github.com/d60-Lab/postservice/internal/validation"
	"github.com/d60-Lab/postservice/pkg/logger"
)

var (
	ErrPostNotFound = errors.New("post not found")
	// ErrStorage 存储层失败；原始错误只进日志，不对外暴露
	ErrStorage = errors.New("storage failure")
)

var tracer = otel.Tracer("github.com/d60-Lab/postservice/internal/service")

// PostService 文章服务
type PostService interface {
	CreatePost(ctx context.Context, payload map[string]interface{}) (*model.Post, error)
	ListPosts(ctx context.Context, f model.ListFilter) (*model.ListResult, error)
	GetPost(ctx context.Context, id int64) (*model.Post, error)
	UpdatePost(ctx context.Context, id int64, payload map[string]interface{}) error
	DeletePost(ctx context.Context, id int64) error
}

type postService struct {
	repo   repository.PostRepository
	lister repository.ListRepository
	cache  *cache.PostCache
}

// NewPostService cache 可以为 nil
func NewPostService(repo repository.PostRepository, lister repository.ListRepository, c *cache.PostCache) PostService {
	if c == nil {
		c = cache.NewPostCache(nil, 0)
	}
	return &postService{repo: repo, lister: lister, cache: c}
}

func (s *postService) CreatePost(ctx context.Context, payload map[string]interface{}) (*model.Post, error) {
	ctx, span := tracer.Start(ctx, "PostService.CreatePost")
	defer span.End()

	in, err := validation.DecodePost(payload)
	if err != nil {
		return nil, err
	}
	post, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, storageError(span, "create post", err)
	}
	s.cache.Invalidate(ctx, 0)
	span.SetAttributes(attribute.Int64("post.id", post.ID))
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context, f model.ListFilter) (*model.ListResult, error) {
	ctx, span := tracer.Start(ctx, "PostService.ListPosts", trace.WithAttributes(
		attribute.String("list.predicate", repository.NewPredicate(f.Category, f.Keyword).Kind.String()),
	))
	defer span.End()

	res, stamp, ok := s.cache.GetList(ctx, f)
	if ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return res, nil
	}
	res, err := s.lister.List(ctx, f)
	if err != nil {
		return nil, storageError(span, "list posts", err)
	}
	s.cache.SetList(ctx, stamp, f, res)
	return res, nil
}

func (s *postService) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	ctx, span := tracer.Start(ctx, "PostService.GetPost", trace.WithAttributes(attribute.Int64("post.id", id)))
	defer span.End()

	post, stamp, ok := s.cache.GetPost(ctx, id)
	if ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return post, nil
	}
	post, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, storageError(span, "get post", err)
	}
	s.cache.SetPost(ctx, stamp, post)
	return post, nil
}

func (s *postService) UpdatePost(ctx context.Context, id int64, payload map[string]interface{}) error {
	ctx, span := tracer.Start(ctx, "PostService.UpdatePost", trace.WithAttributes(attribute.Int64("post.id", id)))
	defer span.End()

	in, err := validation.DecodePost(payload)
	if err != nil {
		return err
	}
	err = s.repo.Update(ctx, id, in)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return storageError(span, "update post", err)
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

func (s *postService) DeletePost(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "PostService.DeletePost", trace.WithAttributes(attribute.Int64("post.id", id)))
	defer span.End()

	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return storageError(span, "delete post", err)
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

func storageError(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)

	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if c, ok := repository.AsConstraint(err); ok {
		fields = append(fields, zap.String("constraint_code", c.Code), zap.String("constraint", c.Name), zap.Bool("foreign_key", c.ForeignKey))
	}
	logger.Error("storage failure", fields...)
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
