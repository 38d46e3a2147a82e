package repository

import (
	"context"
	"fmt"
	"math"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/d60-Lab/postservice/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 6
	MaxLimit     = 100

	// 页码无上限，仅防止 offset 溢出
	maxPage = math.MaxInt32
)

// Page 归一化后的分页参数
type Page struct {
	Page   int
	Limit  int
	Offset int
}

// Normalize 缺省 page=1、limit=6；page 下限 1，limit 夹在 [1, 100]
func Normalize(f model.ListFilter) Page {
	page, limit := DefaultPage, DefaultLimit
	if f.Page != nil {
		page = *f.Page
	}
	if f.Limit != nil {
		limit = *f.Limit
	}
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// ParseListFilter 解析查询字符串；page/limit 缺失或非数字时保持 nil
func ParseListFilter(category, keyword, page, limit string) model.ListFilter {
	return model.ListFilter{
		Category: category,
		Keyword:  keyword,
		Page:     parseInt(page),
		Limit:    parseInt(limit),
	}
}

func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

var listColumns = []string{
	"posts.id",
	"posts.image",
	"categories.name AS category",
	"posts.title",
	"posts.description",
	"posts.date",
	"posts.content",
	"statuses.status",
	"posts.likes_count",
}

// PostLister 文章列表查询：主查询 + 相同条件的计数查询
type PostLister struct {
	db      *sqlx.DB
	dialect Dialect
}

// NewPostLister db 与仓储共享连接池
func NewPostLister(db *sqlx.DB, dialect Dialect) *PostLister {
	return &PostLister{db: db, dialect: dialect}
}

// ListQuery 一次列表请求对应的两条 SQL
type ListQuery struct {
	Page      Page
	Predicate Predicate
	Main      sq.SelectBuilder
	Count     sq.SelectBuilder
}

// Build 构造主查询与计数查询，两者使用同一组连接和同一条件
func (l *PostLister) Build(f model.ListFilter) ListQuery {
	page := Normalize(f)
	pred := NewPredicate(f.Category, f.Keyword)

	from := func(columns ...string) sq.SelectBuilder {
		b := sq.Select(columns...).
			From("posts").
			InnerJoin("categories ON posts.category_id = categories.id").
			InnerJoin("statuses ON posts.status_id = statuses.id").
			PlaceholderFormat(l.dialect.PlaceholderFormat())
		if cond := pred.Lower(l.dialect); cond != nil {
			b = b.Where(cond)
		}
		return b
	}

	return ListQuery{
		Page:      page,
		Predicate: pred,
		Main: from(listColumns...).
			OrderBy("posts.date DESC").
			Limit(uint64(page.Limit)).
			Offset(uint64(page.Offset)),
		Count: from("COUNT(*)"),
	}
}

// List 执行列表查询。两条查询之间不加锁，计数与当前页可能来自不同快照；
// 任一查询失败则整体失败。
func (l *PostLister) List(ctx context.Context, f model.ListFilter) (*model.ListResult, error) {
	q := l.Build(f)

	query, args, err := q.Main.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list sql: %w", err)
	}
	posts := make([]model.ListedPost, 0, q.Page.Limit)
	if err := l.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	countQuery, countArgs, err := q.Count.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count sql: %w", err)
	}
	var total int64
	if err := l.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	return Paginate(q.Page, total, posts), nil
}

// Paginate 由总数推导分页信息，不依赖当前页实际返回的条数
func Paginate(p Page, total int64, posts []model.ListedPost) *model.ListResult {
	limit := int64(p.Limit)
	res := &model.ListResult{
		TotalPosts:  total,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: p.Page,
		Limit:       p.Limit,
		Posts:       posts,
	}
	if int64(p.Offset)+limit < total {
		next := p.Page + 1
		res.NextPage = &next
	}
	if p.Offset > 0 {
		prev := p.Page - 1
		res.PreviousPage = &prev
	}
	return res
}

// ListRepository 列表查询接口
type ListRepository interface {
	List(ctx context.Context, f model.ListFilter) (*model.ListResult, error)
}
