package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/postservice/internal/cache"
	"github.com/d60-Lab/postservice/internal/model"
	"github.com/d60-Lab/postservice/internal/repository"
	"github.com/d60-Lab/postservice/internal/validation"
)

type PostServiceSuite struct {
	suite.Suite

	db    *gorm.DB
	mr    *miniredis.Miniredis
	cache *cache.PostCache
	svc   PostService

	categoryID int64
	statusID   int64
}

func TestPostServiceSuite(t *testing.T) {
	suite.Run(t, new(PostServiceSuite))
}

func (s *PostServiceSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.T().Cleanup(func() { _ = sqlDB.Close() })
	s.Require().NoError(db.Exec("PRAGMA foreign_keys = ON").Error)

	repo := repository.NewPostRepository(db)
	s.Require().NoError(repo.InitSchema())

	cat := model.Category{Name: "Tech"}
	st := model.Status{Status: "publish"}
	s.Require().NoError(db.Create(&cat).Error)
	s.Require().NoError(db.Create(&st).Error)
	s.categoryID, s.statusID = cat.ID, st.ID

	s.mr = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })

	s.db = db
	s.cache = cache.NewPostCache(client, time.Minute)
	lister := repository.NewPostLister(sqlx.NewDb(sqlDB, "sqlite3"), repository.SQLiteDialect{})
	s.svc = NewPostService(repo, lister, s.cache)
}

func (s *PostServiceSuite) payload(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":       title,
		"image":       "https://example.com/a.png",
		"category_id": float64(s.categoryID),
		"description": "desc",
		"content":     "body",
		"status_id":   float64(s.statusID),
	}
}

func (s *PostServiceSuite) TestCreateThenGetRoundTrip() {
	ctx := context.Background()
	p := s.payload("Intro")

	created, err := s.svc.CreatePost(ctx, p)
	s.Require().NoError(err)

	got, err := s.svc.GetPost(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Intro", got.Title)
	s.Equal(p["image"], got.Image)
	s.Equal(s.categoryID, got.CategoryID)
	s.Equal("desc", got.Description)
	s.Equal("body", got.Content)
	s.Equal(s.statusID, got.StatusID)
}

func (s *PostServiceSuite) TestCreateValidationError() {
	_, err := s.svc.CreatePost(context.Background(), s.payload(""))

	var verr *validation.Error
	s.Require().ErrorAs(err, &verr)
	s.Equal("Title is required", verr.Message)

	var cnt int64
	s.Require().NoError(s.db.Model(&model.Post{}).Count(&cnt).Error)
	s.Zero(cnt)
}

func (s *PostServiceSuite) TestCreateUnknownCategoryIsStorageError() {
	p := s.payload("x")
	p["category_id"] = float64(404)

	_, err := s.svc.CreatePost(context.Background(), p)
	s.ErrorIs(err, ErrStorage)
}

func (s *PostServiceSuite) TestGetUsesCacheUntilUpdate() {
	ctx := context.Background()
	created, err := s.svc.CreatePost(ctx, s.payload("Before"))
	s.Require().NoError(err)

	_, err = s.svc.GetPost(ctx, created.ID)
	s.Require().NoError(err)
	cached, _, ok := s.cache.GetPost(ctx, created.ID)
	s.Require().True(ok)
	s.Equal("Before", cached.Title)

	s.Require().NoError(s.svc.UpdatePost(ctx, created.ID, s.payload("After")))
	_, _, ok = s.cache.GetPost(ctx, created.ID)
	s.False(ok)

	got, err := s.svc.GetPost(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("After", got.Title)
}

func (s *PostServiceSuite) TestDeletedPostNotServedFromCache() {
	ctx := context.Background()
	created, err := s.svc.CreatePost(ctx, s.payload("short lived"))
	s.Require().NoError(err)
	_, err = s.svc.GetPost(ctx, created.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeletePost(ctx, created.ID))
	_, err = s.svc.GetPost(ctx, created.ID)
	s.ErrorIs(err, ErrPostNotFound)
}

func (s *PostServiceSuite) TestListInvalidatedByCreate() {
	ctx := context.Background()
	_, err := s.svc.CreatePost(ctx, s.payload("one"))
	s.Require().NoError(err)

	first, err := s.svc.ListPosts(ctx, model.ListFilter{})
	s.Require().NoError(err)
	s.EqualValues(1, first.TotalPosts)

	_, err = s.svc.CreatePost(ctx, s.payload("two"))
	s.Require().NoError(err)

	second, err := s.svc.ListPosts(ctx, model.ListFilter{})
	s.Require().NoError(err)
	s.EqualValues(2, second.TotalPosts)
}

func (s *PostServiceSuite) TestUpdateMissing() {
	err := s.svc.UpdatePost(context.Background(), 99, s.payload("x"))
	s.ErrorIs(err, ErrPostNotFound)
}

func (s *PostServiceSuite) TestUpdateValidatesBeforeExistence() {
	p := s.payload("x")
	p["status_id"] = "1"

	err := s.svc.UpdatePost(context.Background(), 99, p)
	s.EqualError(err, "Status_id must be a number")
}

func (s *PostServiceSuite) TestDelete() {
	ctx := context.Background()
	created, err := s.svc.CreatePost(ctx, s.payload("bye"))
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeletePost(ctx, created.ID))
	_, err = s.svc.GetPost(ctx, created.ID)
	s.ErrorIs(err, ErrPostNotFound)
	s.ErrorIs(s.svc.DeletePost(ctx, created.ID), ErrPostNotFound)
}

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Create(ctx context.Context, in model.PostInput) (*model.Post, error) {
	args := m.Called(ctx, in)
	post, _ := args.Get(0).(*model.Post)
	return post, args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*model.Post)
	return post, args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, id int64, in model.PostInput) error {
	return m.Called(ctx, id, in).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) Close() error { return nil }

type mockLister struct{ mock.Mock }

func (m *mockLister) List(ctx context.Context, f model.ListFilter) (*model.ListResult, error) {
	args := m.Called(ctx, f)
	res, _ := args.Get(0).(*model.ListResult)
	return res, args.Error(1)
}

func TestPostService_StorageErrorsAreWrapped(t *testing.T) {
	boom := errors.New("dial tcp 10.0.0.1:5432: connection refused")
	repo := new(mockRepo)
	lister := new(mockLister)
	repo.On("GetByID", mock.Anything, int64(1)).Return(nil, boom)
	repo.On("Delete", mock.Anything, int64(1)).Return(boom)
	lister.On("List", mock.Anything, mock.Anything).Return(nil, boom)

	svc := NewPostService(repo, lister, nil)
	ctx := context.Background()

	_, err := svc.GetPost(ctx, 1)
	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrPostNotFound)

	_, err = svc.ListPosts(ctx, model.ListFilter{})
	assert.ErrorIs(t, err, ErrStorage)

	assert.ErrorIs(t, svc.DeletePost(ctx, 1), ErrStorage)

	repo.AssertExpectations(t)
	lister.AssertExpectations(t)
}

func TestPostService_NotFoundMapping(t *testing.T) {
	repo := new(mockRepo)
	repo.On("Update", mock.Anything, int64(5), mock.Anything).Return(repository.ErrNotFound)

	svc := NewPostService(repo, new(mockLister), nil)
	p := map[string]interface{}{
		"title": "t", "image": "i", "category_id": float64(1),
		"description": "d", "content": "c", "status_id": float64(1),
	}
	err := svc.UpdatePost(context.Background(), 5, p)
	require.ErrorIs(t, err, ErrPostNotFound)
	repo.AssertExpectations(t)
}
