package repository

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Dialect 屏蔽不同数据库在占位符与大小写不敏感匹配上的差异
type Dialect interface {
	Name() string
	PlaceholderFormat() sq.PlaceholderFormat
	// Contains 生成 column 包含 term（忽略大小写）的条件
	Contains(column, term string) sq.Sqlizer
}

// PostgresDialect 使用 ILIKE 与 $n 占位符
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) PlaceholderFormat() sq.PlaceholderFormat { return sq.Dollar }

func (PostgresDialect) Contains(column, term string) sq.Sqlizer {
	return sq.ILike{column: "%" + term + "%"}
}

// SQLiteDialect 没有 ILIKE，两侧统一 LOWER 后 LIKE
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite" }

func (SQLiteDialect) PlaceholderFormat() sq.PlaceholderFormat { return sq.Question }

func (SQLiteDialect) Contains(column, term string) sq.Sqlizer {
	return sq.Expr("LOWER("+column+") LIKE LOWER(?)", "%"+term+"%")
}

// DialectFor 根据 gorm 方言名选择实现
func DialectFor(name string) (Dialect, error) {
	switch name {
	case "postgres", "pgx":
		return PostgresDialect{}, nil
	case "sqlite", "sqlite3":
		return SQLiteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", name)
	}
}
