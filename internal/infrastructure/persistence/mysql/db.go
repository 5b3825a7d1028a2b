package mysql

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
)

// mysqlTableOptions 标签去重区分大小写，使用utf8mb4_bin排序规则
const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

// NewDB 创建数据库连接
// 1. 按database.driver选择MySQL或SQLite
// 2. 配置连接池
// 3. 自动迁移表结构
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
		dialector = sqlite.Open(cfg.Database.Path + "?_foreign_keys=on&_busy_timeout=5000")
	default:
		dialector = mysql.Open(cfg.Database.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(cfg.Server.Mode),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	if cfg.Database.Driver == "sqlite" {
		// SQLite单写者，串行化写入避免database is locked
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	logrus.WithField("driver", db.Dialector.Name()).Info("数据库连接成功")

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// newGormLogger SQL日志输出到logrus，debug模式打印全部SQL
func newGormLogger(mode string) logger.Interface {
	level := logger.Warn
	if mode == "debug" {
		level = logger.Info
	}
	return logger.New(logrus.StandardLogger(), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// AutoMigrate 自动迁移表结构
// 生产环境应使用版本化的迁移脚本
func AutoMigrate(db *gorm.DB) error {
	if db.Dialector.Name() == "mysql" {
		db = db.Set("gorm:table_options", mysqlTableOptions)
	}
	return db.AutoMigrate(
		&UserModel{},
		&AuthorModel{},
		&CategoryModel{},
		&PublisherModel{},
		&BookModel{},
		&BookAuthorModel{},
		&BookCategoryModel{},
		&ShelfEntryModel{},
		&ReviewModel{},
	)
}

// UserModel GORM用户模型
// domain/user/entity.go是领域实体，Repository负责两者之间的转换
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"uniqueIndex;size:64;not null;comment:用户名"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	ImageURL  string    `gorm:"size:500;not null;comment:头像URL"`
	Bio       string    `gorm:"type:text;comment:个人简介"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (UserModel) TableName() string {
	return "users"
}

// AuthorModel 作者，name唯一
type AuthorModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:255;not null;comment:作者名"`
}

func (AuthorModel) TableName() string {
	return "authors"
}

// CategoryModel 分类，name唯一
type CategoryModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:255;not null;comment:分类名"`
}

func (CategoryModel) TableName() string {
	return "categories"
}

// PublisherModel 出版社，name唯一
type PublisherModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:255;not null;comment:出版社名"`
}

func (PublisherModel) TableName() string {
	return "publishers"
}

// BookModel GORM图书模型
// external_id（Google Books volume id）唯一，是图书的去重键
type BookModel struct {
	ID          uint           `gorm:"primaryKey"`
	ExternalID  string         `gorm:"uniqueIndex;size:64;not null;comment:外部目录ID"`
	Title       string         `gorm:"index;size:255;not null;comment:书名"`
	Subtitle    string         `gorm:"size:255;comment:副标题"`
	CoverURL    string         `gorm:"size:2048;comment:封面图片URL"`
	PublisherID uint           `gorm:"index;not null;comment:出版社ID"`
	Publisher   PublisherModel `gorm:"foreignKey:PublisherID"`
	CreatedAt   time.Time      `gorm:"comment:创建时间"`
}

func (BookModel) TableName() string {
	return "books"
}

// BookAuthorModel 图书-作者关联，position保留外部记录中的作者顺序
type BookAuthorModel struct {
	BookID   uint `gorm:"primaryKey;autoIncrement:false"`
	AuthorID uint `gorm:"primaryKey;autoIncrement:false;index"`
	Position int  `gorm:"not null;default:0"`
}

func (BookAuthorModel) TableName() string {
	return "books_authors"
}

// BookCategoryModel 图书-分类关联
type BookCategoryModel struct {
	BookID     uint `gorm:"primaryKey;autoIncrement:false"`
	CategoryID uint `gorm:"primaryKey;autoIncrement:false;index"`
	Position   int  `gorm:"not null;default:0"`
}

func (BookCategoryModel) TableName() string {
	return "books_categories"
}

// ShelfEntryModel 书架条目，四个书架共用一张表
// 自增ID即加入顺序
type ShelfEntryModel struct {
	ID      uint      `gorm:"primaryKey"`
	UserID  uint      `gorm:"uniqueIndex:uk_shelf_entry,priority:1;not null;comment:用户ID"`
	Shelf   string    `gorm:"uniqueIndex:uk_shelf_entry,priority:2;size:32;not null;comment:书架"`
	BookID  uint      `gorm:"uniqueIndex:uk_shelf_entry,priority:3;index;not null;comment:图书ID"`
	User    UserModel `gorm:"foreignKey:UserID"`
	Book    BookModel `gorm:"foreignKey:BookID"`
	AddedAt time.Time `gorm:"not null;comment:加入时间"`
}

func (ShelfEntryModel) TableName() string {
	return "shelf_entries"
}

// ReviewModel 书评，(user_id, book_id)唯一
type ReviewModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:uk_review_user_book,priority:1;not null;comment:用户ID"`
	BookID    uint      `gorm:"uniqueIndex:uk_review_user_book,priority:2;index;not null;comment:图书ID"`
	Rating    int       `gorm:"not null;comment:评分1-5"`
	Text      string    `gorm:"type:text;comment:书评内容"`
	User      UserModel `gorm:"foreignKey:UserID"`
	Book      BookModel `gorm:"foreignKey:BookID"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"index;comment:更新时间"`
}

func (ReviewModel) TableName() string {
	return "reviews"
}
