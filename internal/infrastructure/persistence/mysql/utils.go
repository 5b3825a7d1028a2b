package mysql

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// isDuplicateError 判断是否为唯一索引冲突
// - MySQL 1062: Duplicate entry 'xxx' for key 'yyy'
// - SQLite: UNIQUE constraint failed: table.column
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// isLockConflict 判断是否为锁冲突，整个事务已被数据库回滚，可以重跑
// - MySQL 1213: Deadlock found when trying to get lock
// - MySQL 1205: Lock wait timeout exceeded
// - SQLite: database is locked
func isLockConflict(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1213 || myErr.Number == 1205
	}
	return strings.Contains(err.Error(), "database is locked")
}

// duplicateOn 冲突是否发生在指定列的唯一索引上
// MySQL默认索引名为idx_<table>_<column>，SQLite报告table.column
func duplicateOn(err error, column string) bool {
	return isDuplicateError(err) && strings.Contains(err.Error(), column)
}

// wrapWriteError 唯一索引冲突转换为ErrDuplicateKey，由应用层重试事务
func wrapWriteError(err error, msg string) error {
	if isDuplicateError(err) {
		return apperrors.ErrDuplicateKey.WithCause(err)
	}
	return apperrors.Wrap(err, msg)
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
