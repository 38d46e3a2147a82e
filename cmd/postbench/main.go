package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/d60-Lab/postservice/config"
	"github.com/d60-Lab/postservice/internal/cache"
	"github.com/d60-Lab/postservice/internal/model"
	"github.com/d60-Lab/postservice/internal/repository"
	"github.com/d60-Lab/postservice/internal/service"
	"github.com/d60-Lab/postservice/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// 压测创建与列表查询的延迟分布
// N=条数 CONC=并发 LIMIT=每页条数 KEYWORD=列表关键字
func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	repo := repository.NewPostRepository(db)
	defer repo.Close()
	if err := repo.InitSchema(); err != nil {
		panic(err)
	}
	sqlxDB := must(database.Sqlx(db))
	dialect := must(repository.DialectFor(db.Dialector.Name()))
	rdb := must(database.InitRedis(ctx, cfg.Redis))
	postCache := cache.NewPostCache(rdb, cfg.Redis.TTL)
	svc := service.NewPostService(repo, repository.NewPostLister(sqlxDB, dialect), postCache)

	N := envInt("N", 2000)
	CONC := envInt("CONC", 8)
	LIMIT := envInt("LIMIT", 6)
	keyword := os.Getenv("KEYWORD")
	if keyword == "" {
		keyword = "bench"
	}

	cat := model.Category{Name: "bench"}
	if err := db.Where("name = ?", cat.Name).FirstOrCreate(&cat).Error; err != nil {
		panic(err)
	}
	st := model.Status{Status: "publish"}
	if err := db.Where("status = ?", st.Status).FirstOrCreate(&st).Error; err != nil {
		panic(err)
	}

	workers := CONC
	if workers > N {
		workers = N
	}
	run := func(op func(i int) error) ([]time.Duration, time.Duration, int) {
		feed := make(chan int, N)
		for i := 0; i < N; i++ {
			feed <- i
		}
		close(feed)
		recs := make(chan time.Duration, N)
		fails := make(chan int, workers)
		t0 := time.Now()
		for w := 0; w < workers; w++ {
			go func() {
				failed := 0
				for i := range feed {
					st := time.Now()
					if err := op(i); err != nil {
						failed++
					}
					recs <- time.Since(st)
				}
				fails <- failed
			}()
		}
		failed := 0
		for w := 0; w < workers; w++ {
			failed += <-fails
		}
		total := time.Since(t0)
		close(recs)
		out := make([]time.Duration, 0, N)
		for d := range recs {
			out = append(out, d)
		}
		return out, total, failed
	}

	createRecs, createDur, createFail := run(func(i int) error {
		_, err := svc.CreatePost(ctx, map[string]interface{}{
			"title":       fmt.Sprintf("bench post %d", i),
			"image":       "https://example.com/bench.png",
			"category_id": float64(cat.ID),
			"description": "bench description",
			"content":     "bench content",
			"status_id":   float64(st.ID),
		})
		return err
	})

	pages := N / LIMIT
	if pages < 1 {
		pages = 1
	}
	listRecs, listDur, listFail := run(func(i int) error {
		page, limit := i%pages+1, LIMIT
		_, err := svc.ListPosts(ctx, model.ListFilter{Category: cat.Name, Keyword: keyword, Page: &page, Limit: &limit})
		return err
	})

	pct := func(vs []time.Duration, p float64) time.Duration {
		if len(vs) == 0 {
			return 0
		}
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(math.Ceil(p*float64(len(xs)))) - 1
		if k < 0 {
			k = 0
		}
		if k >= len(xs) {
			k = len(xs) - 1
		}
		return xs[k]
	}

	fmt.Printf("driver=%s N=%d CONC=%d LIMIT=%d cache=%v\n", dialect.Name(), N, CONC, LIMIT, postCache.Enabled())
	fmt.Printf("Create total: %v, per op: %v, p50: %v, p95: %v, p99: %v, failed: %d\n",
		createDur, createDur/time.Duration(N), pct(createRecs, 0.50), pct(createRecs, 0.95), pct(createRecs, 0.99), createFail)
	fmt.Printf("List total: %v, per op: %v, p50: %v, p95: %v, p99: %v, failed: %d\n",
		listDur, listDur/time.Duration(N), pct(listRecs, 0.50), pct(listRecs, 0.95), pct(listRecs, 0.99), listFail)
	if postCache.Enabled() {
		c := postCache.Counters()
		fmt.Printf("Cache hits: %d, misses: %d\n", c.Hits, c.Misses)
	}
}
