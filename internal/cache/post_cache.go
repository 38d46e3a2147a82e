package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/postservice/internal/model"
	"github.com/d60-Lab/postservice/pkg/logger"
)

const (
	postKeyPrefix  = "post:"
	postGenKey     = "posts:gen"
	listVersionKey = "posts:list:version"
)

// PostCache 文章详情与列表页的读缓存。
// 列表 key 带全局版本号，单篇 key 带该文章的代数；写操作递增版本/代数，
// 旧 key 不再被读到，随 TTL 过期。
// client 为 nil 时所有方法都是空操作。
type PostCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// Stamp 读缓存未命中时看到的版本；回源后写缓存必须带回同一个 Stamp，
// 这样回源期间发生的失效不会被旧结果覆盖。
type Stamp struct {
	version int64
	valid   bool
}

func NewPostCache(client *redis.Client, ttl time.Duration) *PostCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PostCache{client: client, ttl: ttl}
}

// Enabled 是否配置了 redis
func (c *PostCache) Enabled() bool { return c != nil && c.client != nil }

func postKey(id, gen int64) string {
	return postKeyPrefix + strconv.FormatInt(id, 10) + ":g" + strconv.FormatInt(gen, 10)
}

// GetPost 未命中时返回的 Stamp 交给 SetPost
func (c *PostCache) GetPost(ctx context.Context, id int64) (*model.Post, Stamp, bool) {
	if !c.Enabled() {
		return nil, Stamp{}, false
	}
	gen, err := c.client.HGet(ctx, postGenKey, strconv.FormatInt(id, 10)).Int64()
	stamp, ok := c.stamp(gen, err)
	if !ok {
		return nil, Stamp{}, false
	}
	var post model.Post
	if !c.get(ctx, postKey(id, stamp.version), &post) {
		return nil, stamp, false
	}
	return &post, stamp, true
}

func (c *PostCache) SetPost(ctx context.Context, stamp Stamp, post *model.Post) {
	if !c.Enabled() || !stamp.valid || post == nil {
		return
	}
	c.set(ctx, postKey(post.ID, stamp.version), post)
}

// GetList 按过滤条件读取列表页缓存
func (c *PostCache) GetList(ctx context.Context, f model.ListFilter) (*model.ListResult, Stamp, bool) {
	if !c.Enabled() {
		return nil, Stamp{}, false
	}
	version, err := c.client.Get(ctx, listVersionKey).Int64()
	stamp, ok := c.stamp(version, err)
	if !ok {
		return nil, Stamp{}, false
	}
	var res model.ListResult
	if !c.get(ctx, listKey(stamp.version, f), &res) {
		return nil, stamp, false
	}
	return &res, stamp, true
}

func (c *PostCache) SetList(ctx context.Context, stamp Stamp, f model.ListFilter, res *model.ListResult) {
	if !c.Enabled() || !stamp.valid || res == nil {
		return
	}
	c.set(ctx, listKey(stamp.version, f), res)
}

// Invalidate 递增文章代数并使所有列表页失效；id <= 0 时只失效列表
func (c *PostCache) Invalidate(ctx context.Context, id int64) {
	if !c.Enabled() {
		return
	}
	pipe := c.client.TxPipeline()
	if id > 0 {
		pipe.HIncrBy(ctx, postGenKey, strconv.FormatInt(id, 10), 1)
	}
	pipe.Incr(ctx, listVersionKey)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("post cache invalidate failed", zap.Int64("post_id", id), zap.Error(err))
	}
}

func (c *PostCache) stamp(version int64, err error) (Stamp, bool) {
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn("post cache version read failed", zap.Error(err))
		c.misses.Add(1)
		return Stamp{}, false
	}
	return Stamp{version: version, valid: true}, true
}

// listKey 各段用 strconv.Quote 包裹，用户输入中的分隔符不会让两个过滤条件撞 key
func listKey(version int64, f model.ListFilter) string {
	return fmt.Sprintf("posts:list:v%d:%s:%s:%s:%s",
		version, strconv.Quote(f.Category), strconv.Quote(f.Keyword), optInt(f.Page), optInt(f.Limit))
}

func optInt(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func (c *PostCache) get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("post cache get failed", zap.String("key", key), zap.Error(err))
		}
		c.misses.Add(1)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.misses.Add(1)
		return false
	}
	c.hits.Add(1)
	return true
}

func (c *PostCache) set(ctx context.Context, key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger.Warn("post cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Counters 命中统计
func (c *PostCache) Counters() CacheCounters {
	return CacheCounters{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// CacheCounters summarises cache hits during a run.
type CacheCounters struct {
	Hits   int64
	Misses int64
}
