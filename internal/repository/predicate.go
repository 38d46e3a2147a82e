package repository

import (
	sq "github.com/Masterminds/squirrel"
)

// PredicateKind 列表过滤的四种互斥模式
type PredicateKind int

const (
	PredicateNone PredicateKind = iota
	PredicateCategory
	PredicateKeyword
	PredicateBoth
)

func (k PredicateKind) String() string {
	switch k {
	case PredicateCategory:
		return "category"
	case PredicateKeyword:
		return "keyword"
	case PredicateBoth:
		return "category+keyword"
	default:
		return "none"
	}
}

// 参与关键字匹配的列
var keywordColumns = []string{"posts.title", "posts.description", "posts.content"}

const categoryColumn = "categories.name"

// Predicate 列表过滤条件；主查询和计数查询共用同一个实例
type Predicate struct {
	Kind     PredicateKind
	Category string
	Keyword  string
}

// NewPredicate 空字符串视为未提供
func NewPredicate(category, keyword string) Predicate {
	switch {
	case category != "" && keyword != "":
		return Predicate{Kind: PredicateBoth, Category: category, Keyword: keyword}
	case category != "":
		return Predicate{Kind: PredicateCategory, Category: category}
	case keyword != "":
		return Predicate{Kind: PredicateKeyword, Keyword: keyword}
	default:
		return Predicate{Kind: PredicateNone}
	}
}

// Lower 转为参数化条件；PredicateNone 返回 nil
func (p Predicate) Lower(d Dialect) sq.Sqlizer {
	switch p.Kind {
	case PredicateCategory:
		return d.Contains(categoryColumn, p.Category)
	case PredicateKeyword:
		return keywordMatch(d, p.Keyword)
	case PredicateBoth:
		return sq.And{d.Contains(categoryColumn, p.Category), keywordMatch(d, p.Keyword)}
	default:
		return nil
	}
}

func keywordMatch(d Dialect, keyword string) sq.Or {
	or := make(sq.Or, 0, len(keywordColumns))
	for _, col := range keywordColumns {
		or = append(or, d.Contains(col, keyword))
	}
	return or
}
