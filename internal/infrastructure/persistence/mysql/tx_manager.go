package mysql

import (
	"context"

	"gorm.io/gorm"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

type txKey struct{}

// TxManager 事务管理器
// 通过context传递事务DB，嵌套调用时复用外层事务
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn内的所有Repository操作都在同一事务中执行，返回error时ROLLBACK，返回nil时COMMIT
// 死锁和锁等待超时转换为ErrTxConflict，调用方可整体重跑
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    b, _, err := normalizer.Ingest(ctx, rec)
//	    if err != nil {
//	        return err
//	    }
//	    _, err = shelfRepo.Add(ctx, userID, b.ID, shelf.WantToRead)
//	    return err
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if isLockConflict(err) {
		return apperrors.ErrTxConflict.WithCause(err)
	}
	return err
}

// getDB 优先使用context中的事务DB
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
