package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// bookRepository 图书目录仓储实现
// 去重键都有唯一索引，写入使用INSERT忽略冲突后加锁回读：
// 并发请求插入同一名称时，后到者的INSERT等待先到者提交，然后读到已提交的行
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

type labelModel interface {
	AuthorModel | CategoryModel | PublisherModel
}

// upsertByName 按name插入或读取标签行
// 回读使用新变量：冲突时GORM可能回填无效的主键
// 回读加共享锁而非排他锁：标签行只增不改，加锁只为在可重复读下读到已提交的行
func upsertByName[T labelModel](db *gorm.DB, row *T, name string) (*T, error) {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(row).Error
	if err != nil {
		return nil, err
	}

	var out T
	if err := db.Clauses(clause.Locking{Strength: "SHARE"}).Where("name = ?", name).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *bookRepository) UpsertAuthor(ctx context.Context, name string) (*book.Author, error) {
	m, err := upsertByName(getDB(ctx, r.db), &AuthorModel{Name: name}, name)
	if err != nil {
		return nil, wrapWriteError(err, "写入作者失败")
	}
	return &book.Author{ID: m.ID, Name: m.Name}, nil
}

func (r *bookRepository) UpsertCategory(ctx context.Context, name string) (*book.Category, error) {
	m, err := upsertByName(getDB(ctx, r.db), &CategoryModel{Name: name}, name)
	if err != nil {
		return nil, wrapWriteError(err, "写入分类失败")
	}
	return &book.Category{ID: m.ID, Name: m.Name}, nil
}

func (r *bookRepository) UpsertPublisher(ctx context.Context, name string) (*book.Publisher, error) {
	m, err := upsertByName(getDB(ctx, r.db), &PublisherModel{Name: name}, name)
	if err != nil {
		return nil, wrapWriteError(err, "写入出版社失败")
	}
	return &book.Publisher{ID: m.ID, Name: m.Name}, nil
}

// CreateIfAbsent 按external_id插入图书
// RowsAffected=0说明另一个请求已插入，返回已有图书
func (r *bookRepository) CreateIfAbsent(ctx context.Context, b *book.Book) (*book.Book, bool, error) {
	db := getDB(ctx, r.db)
	model := &BookModel{
		ExternalID:  b.ExternalID,
		Title:       b.Title,
		Subtitle:    b.Subtitle,
		CoverURL:    b.CoverURL,
		PublisherID: b.PublisherID,
	}

	result := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return nil, false, apperrors.ErrDuplicateKey.WithCause(result.Error)
		}
		return nil, false, apperrors.Wrap(result.Error, "创建图书失败")
	}

	if result.RowsAffected == 0 {
		existing, err := r.findOne(db.Clauses(clause.Locking{Strength: "UPDATE"}), "external_id = ?", b.ExternalID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	return b, true, nil
}

func (r *bookRepository) AttachAuthors(ctx context.Context, bookID uint, authorIDs []uint) error {
	if len(authorIDs) == 0 {
		return nil
	}
	rows := make([]BookAuthorModel, len(authorIDs))
	for i, id := range authorIDs {
		rows[i] = BookAuthorModel{BookID: bookID, AuthorID: id, Position: i}
	}
	if err := getDB(ctx, r.db).Create(&rows).Error; err != nil {
		return wrapWriteError(err, "写入图书作者失败")
	}
	return nil
}

func (r *bookRepository) AttachCategories(ctx context.Context, bookID uint, categoryIDs []uint) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	rows := make([]BookCategoryModel, len(categoryIDs))
	for i, id := range categoryIDs {
		rows[i] = BookCategoryModel{BookID: bookID, CategoryID: id, Position: i}
	}
	if err := getDB(ctx, r.db).Create(&rows).Error; err != nil {
		return wrapWriteError(err, "写入图书分类失败")
	}
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.findOne(getDB(ctx, r.db), "books.id = ?", id)
}

func (r *bookRepository) FindByExternalID(ctx context.Context, externalID string) (*book.Book, error) {
	return r.findOne(getDB(ctx, r.db), "external_id = ?", externalID)
}

func (r *bookRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := getDB(ctx, r.db).Model(&BookModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(err, "查询图书失败")
	}
	return count > 0, nil
}

// List 分页查询，按入库时间倒序
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	page, pageSize := normalizePage(params.Page, params.PageSize)
	db := getDB(ctx, r.db).Model(&BookModel{})
	if params.Keyword != "" {
		db = db.Where("title LIKE ?", "%"+params.Keyword+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	var models []BookModel
	err := db.Preload("Publisher").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books, err := loadBooks(getDB(ctx, r.db), models)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *bookRepository) findOne(db *gorm.DB, query string, args ...interface{}) (*book.Book, error) {
	var model BookModel
	if err := db.Preload("Publisher").Where(query, args...).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	books, err := loadBooks(db.Session(&gorm.Session{NewDB: true}), []BookModel{model})
	if err != nil {
		return nil, err
	}
	return books[0], nil
}

// loadBooks 批量加载作者和分类（按关联表position排序），转换为领域实体
func loadBooks(db *gorm.DB, models []BookModel) ([]*book.Book, error) {
	if len(models) == 0 {
		return []*book.Book{}, nil
	}

	ids := make([]uint, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}

	type authorRow struct {
		BookID uint
		ID     uint
		Name   string
	}
	var authors []authorRow
	err := db.Table("books_authors").
		Select("books_authors.book_id, authors.id, authors.name").
		Joins("JOIN authors ON authors.id = books_authors.author_id").
		Where("books_authors.book_id IN ?", ids).
		Order("books_authors.book_id, books_authors.position").
		Scan(&authors).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询图书作者失败")
	}

	type categoryRow struct {
		BookID uint
		ID     uint
		Name   string
	}
	var categories []categoryRow
	err = db.Table("books_categories").
		Select("books_categories.book_id, categories.id, categories.name").
		Joins("JOIN categories ON categories.id = books_categories.category_id").
		Where("books_categories.book_id IN ?", ids).
		Order("books_categories.book_id, books_categories.position").
		Scan(&categories).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询图书分类失败")
	}

	byAuthor := make(map[uint][]book.Author)
	for _, a := range authors {
		byAuthor[a.BookID] = append(byAuthor[a.BookID], book.Author{ID: a.ID, Name: a.Name})
	}
	byCategory := make(map[uint][]book.Category)
	for _, c := range categories {
		byCategory[c.BookID] = append(byCategory[c.BookID], book.Category{ID: c.ID, Name: c.Name})
	}

	out := make([]*book.Book, len(models))
	for i := range models {
		b := toBookEntity(&models[i])
		b.Authors = byAuthor[b.ID]
		b.Categories = byCategory[b.ID]
		out[i] = b
	}
	return out, nil
}

func toBookEntity(m *BookModel) *book.Book {
	b := &book.Book{
		ID:          m.ID,
		ExternalID:  m.ExternalID,
		Title:       m.Title,
		Subtitle:    m.Subtitle,
		CoverURL:    m.CoverURL,
		PublisherID: m.PublisherID,
		CreatedAt:   m.CreatedAt,
	}
	if m.Publisher.ID != 0 {
		b.Publisher = &book.Publisher{ID: m.Publisher.ID, Name: m.Publisher.Name}
	}
	return b
}
