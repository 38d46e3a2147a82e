package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Constraint 存储层约束冲突信息
type Constraint struct {
	Code string
	Name string
	// ForeignKey 引用的分类或状态不存在
	ForeignKey bool
}

// AsConstraint 识别 postgres / sqlite 的约束冲突，其他错误返回 false
func AsConstraint(err error) (Constraint, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) < 2 || pgErr.Code[:2] != "23" {
			return Constraint{}, false
		}
		return Constraint{
			Code:       pgErr.Code,
			Name:       pgErr.ConstraintName,
			ForeignKey: pgErr.Code == "23503",
		}, true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		return Constraint{
			Code:       liteErr.ExtendedCode.Error(),
			ForeignKey: liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey,
		}, true
	}
	return Constraint{}, false
}
