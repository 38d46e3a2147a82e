package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/d60-Lab/postservice/config"
	"github.com/d60-Lab/postservice/internal/model"
	"github.com/d60-Lab/postservice/internal/repository"
	"github.com/d60-Lab/postservice/pkg/database"
)

var (
	categories = []string{"Technology", "Travel", "Food", "Lifestyle"}
	statuses   = []string{"draft", "publish", "archived"}
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

// 用法: POSTS=50 go run ./cmd/seed
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	repo := repository.NewPostRepository(db)
	defer repo.Close()
	mustDo(repo.InitSchema())

	catIDs := make([]int64, 0, len(categories))
	for _, name := range categories {
		c := model.Category{Name: name}
		mustDo(db.Where("name = ?", name).FirstOrCreate(&c).Error)
		catIDs = append(catIDs, c.ID)
	}
	statusIDs := make([]int64, 0, len(statuses))
	for _, name := range statuses {
		s := model.Status{Status: name}
		mustDo(db.Where("status = ?", name).FirstOrCreate(&s).Error)
		statusIDs = append(statusIDs, s.ID)
	}

	n := 20
	if s := os.Getenv("POSTS"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			n = v
		}
	}

	ctx := context.Background()
	for i := 0; i < n; i++ {
		cat := categories[i%len(categories)]
		_ = must(repo.Create(ctx, model.PostInput{
			Title:       fmt.Sprintf("%s post #%d", cat, i+1),
			Image:       fmt.Sprintf("https://picsum.photos/seed/%d/640/360", i+1),
			CategoryID:  catIDs[i%len(catIDs)],
			Description: fmt.Sprintf("A short introduction to %s post #%d", cat, i+1),
			Content:     "Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
			StatusID:    statusIDs[i%len(statusIDs)],
		}))
	}
	fmt.Printf("seeded %d categories, %d statuses, %d posts\n", len(catIDs), len(statusIDs), n)
}
