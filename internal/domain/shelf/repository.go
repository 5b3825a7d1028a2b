package shelf

import (
	"context"
)

// Repository 书架仓储接口
// 四个书架共用一张表shelf_entries，唯一索引(user_id, shelf, book_id)
type Repository interface {
	// Add 加入书架，已存在时不插入，added=false
	Add(ctx context.Context, userID, bookID uint, v Variant) (added bool, err error)

	// Remove 移出书架，不存在时removed=false
	Remove(ctx context.Context, userID, bookID uint, v Variant) (removed bool, err error)

	// List 按加入顺序返回书架条目（含图书及出版社、作者、分类）
	List(ctx context.Context, userID uint, v Variant) ([]*Entry, error)

	// ShelvesOf 图书所在的书架
	ShelvesOf(ctx context.Context, userID, bookID uint) ([]Variant, error)

	// Count 各书架图书数量，没有图书的书架不出现在结果中
	Count(ctx context.Context, userID uint) (map[Variant]int64, error)
}
