package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshelf/internal/domain/shelf"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// shelfRepository 书架仓储实现
type shelfRepository struct {
	db *gorm.DB
}

// NewShelfRepository 创建书架仓储
func NewShelfRepository(db *gorm.DB) shelf.Repository {
	return &shelfRepository{db: db}
}

// Add 唯一索引(user_id, shelf, book_id)保证幂等
func (r *shelfRepository) Add(ctx context.Context, userID, bookID uint, v shelf.Variant) (bool, error) {
	model := &ShelfEntryModel{
		UserID:  userID,
		Shelf:   string(v),
		BookID:  bookID,
		AddedAt: time.Now(),
	}
	result := getDB(ctx, r.db).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "shelf"}, {Name: "book_id"}},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "加入书架失败")
	}
	return result.RowsAffected > 0, nil
}

func (r *shelfRepository) Remove(ctx context.Context, userID, bookID uint, v shelf.Variant) (bool, error) {
	result := getDB(ctx, r.db).
		Where("user_id = ? AND shelf = ? AND book_id = ?", userID, string(v), bookID).
		Delete(&ShelfEntryModel{})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "移出书架失败")
	}
	return result.RowsAffected > 0, nil
}

// List 按自增ID（加入顺序）返回
func (r *shelfRepository) List(ctx context.Context, userID uint, v shelf.Variant) ([]*shelf.Entry, error) {
	db := getDB(ctx, r.db)

	var models []ShelfEntryModel
	err := db.Preload("Book.Publisher").
		Where("user_id = ? AND shelf = ?", userID, string(v)).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询书架失败")
	}

	bookModels := make([]BookModel, len(models))
	for i, m := range models {
		bookModels[i] = m.Book
	}
	books, err := loadBooks(getDB(ctx, r.db), bookModels)
	if err != nil {
		return nil, err
	}

	entries := make([]*shelf.Entry, len(models))
	for i, m := range models {
		entries[i] = &shelf.Entry{
			ID:      m.ID,
			UserID:  m.UserID,
			BookID:  m.BookID,
			Shelf:   shelf.Variant(m.Shelf),
			Book:    books[i],
			AddedAt: m.AddedAt,
		}
	}
	return entries, nil
}

func (r *shelfRepository) ShelvesOf(ctx context.Context, userID, bookID uint) ([]shelf.Variant, error) {
	var names []string
	err := getDB(ctx, r.db).Model(&ShelfEntryModel{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Order("id ASC").
		Pluck("shelf", &names).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询书架失败")
	}

	out := make([]shelf.Variant, len(names))
	for i, n := range names {
		out[i] = shelf.Variant(n)
	}
	return out, nil
}

func (r *shelfRepository) Count(ctx context.Context, userID uint) (map[shelf.Variant]int64, error) {
	var rows []struct {
		Shelf string
		Total int64
	}
	err := getDB(ctx, r.db).Model(&ShelfEntryModel{}).
		Select("shelf, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("shelf").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "统计书架失败")
	}

	out := make(map[shelf.Variant]int64, len(rows))
	for _, row := range rows {
		out[shelf.Variant(row.Shelf)] = row.Total
	}
	return out, nil
}
