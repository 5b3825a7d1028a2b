package shelf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/domain/shelf"
	"github.com/xiebiao/bookshelf/internal/domain/user"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshelf/internal/testutil"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/mq"
)

type fixture struct {
	db        *gorm.DB
	add       *AddToShelfUseCase
	addRecord *AddRecordToShelfUseCase
	remove    *RemoveFromShelfUseCase
	list      *ListShelfUseCase
	summary   *ShelfSummaryUseCase
	ingest    *appbook.IngestUseCase
	reader    *user.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.InitMemoryDB(t)
	require.NoError(t, mysql.AutoMigrate(db))

	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	shelfRepo := mysql.NewShelfRepository(db)
	pub := mq.NopPublisher{}
	ingest := appbook.NewIngestUseCase(book.NewNormalizer(bookRepo), mysql.NewTxManager(db), pub)

	reader := user.NewUser("reader", "reader@example.com", "hash", "")
	require.NoError(t, userRepo.Create(context.Background(), reader))

	return &fixture{
		db:        db,
		add:       NewAddToShelfUseCase(shelfRepo, bookRepo, userRepo, pub),
		addRecord: NewAddRecordToShelfUseCase(ingest, shelfRepo, userRepo, pub),
		remove:    NewRemoveFromShelfUseCase(shelfRepo, bookRepo, pub),
		list:      NewListShelfUseCase(shelfRepo, userRepo),
		summary:   NewShelfSummaryUseCase(shelfRepo, userRepo),
		ingest:    ingest,
		reader:    reader,
	}
}

func (f *fixture) ingestBook(t *testing.T, externalID, title string) uint {
	t.Helper()
	resp, err := f.ingest.Execute(context.Background(), appbook.IngestRequest{
		ExternalID: externalID,
		Title:      title,
		Authors:    []string{"Malcolm Gladwell"},
		Publisher:  "Penguin UK",
	})
	require.NoError(t, err)
	return resp.Book.ID
}

func (f *fixture) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Table(table).Count(&n).Error)
	return n
}

func TestAddAndList(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	outliers := f.ingestBook(t, "ialrgIT41OAC", "Outliers")
	blink := f.ingestBook(t, "blink-id", "Blink")

	res, err := f.add.Execute(ctx, ShelfRequest{UserID: f.reader.ID, BookID: blink, Shelf: "read"})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	_, err = f.add.Execute(ctx, ShelfRequest{UserID: f.reader.ID, BookID: outliers, Shelf: "read"})
	require.NoError(t, err)

	t.Run("重复加入是幂等的", func(t *testing.T) {
		res, err := f.add.Execute(ctx, ShelfRequest{UserID: f.reader.ID, BookID: blink, Shelf: "read"})
		require.NoError(t, err)
		assert.False(t, res.Changed)
		assert.Equal(t, int64(2), f.count(t, "shelf_entries"))
	})

	t.Run("按加入顺序返回", func(t *testing.T) {
		entries, err := f.list.Execute(ctx, f.reader.ID, "read")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "Blink", entries[0].Book.Title)
		assert.Equal(t, "Outliers", entries[1].Book.Title)
		assert.Equal(t, []string{"Malcolm Gladwell"}, entries[1].Book.Authors)
		assert.Equal(t, "Penguin UK", entries[1].Book.Publisher)
	})

	t.Run("书架相互独立", func(t *testing.T) {
		_, err := f.add.Execute(ctx, ShelfRequest{UserID: f.reader.ID, BookID: blink, Shelf: "favorite"})
		require.NoError(t, err)

		entries, err := f.list.Execute(ctx, f.reader.ID, "favorite")
		require.NoError(t, err)
		assert.Len(t, entries, 1)

		entries, err = f.list.Execute(ctx, f.reader.ID, "want_to_read")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("错误参数", func(t *testing.T) {
		_, err := f.add.Execute(ctx, ShelfRequest{UserID: f.reader.ID, BookID: blink, Shelf: "wishlist"})
		assert.ErrorIs(t, err, shelf.ErrInvalidVariant)

		_, err = f.add.Execute(ctx, ShelfRequest{UserID: f.reader.ID, BookID: 999, Shelf: "read"})
		assert.ErrorIs(t, err, book.ErrBookNotFound)

		_, err = f.add.Execute(ctx, ShelfRequest{BookID: blink, Shelf: "read"})
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

		_, err = f.list.Execute(ctx, 999, "read")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestRemove(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	outliers := f.ingestBook(t, "ialrgIT41OAC", "Outliers")

	_, err := f.add.Execute(ctx, ShelfRequest{UserID: f.reader.ID, BookID: outliers, Shelf: "currently_reading"})
	require.NoError(t, err)

	res, err := f.remove.Execute(ctx, ShelfRequest{UserID: f.reader.ID, BookID: outliers, Shelf: "currently_reading"})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	_, err = f.remove.Execute(ctx, ShelfRequest{UserID: f.reader.ID, BookID: outliers, Shelf: "currently_reading"})
	assert.ErrorIs(t, err, shelf.ErrNotOnShelf)

	_, err = f.remove.Execute(ctx, ShelfRequest{UserID: f.reader.ID, BookID: 999, Shelf: "currently_reading"})
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	// 移出书架不删除图书
	assert.Equal(t, int64(1), f.count(t, "books"))
}

func TestAddRecord(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	record := appbook.IngestRequest{
		ExternalID: "ialrgIT41OAC",
		Title:      "Outliers",
		Publisher:  "Penguin UK",
	}

	res, err := f.addRecord.Execute(ctx, AddRecordRequest{UserID: f.reader.ID, Shelf: "want_to_read", Record: record})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.True(t, res.Created)
	assert.Equal(t, []string{book.SentinelLabel}, res.Book.Authors)

	again, err := f.addRecord.Execute(ctx, AddRecordRequest{UserID: f.reader.ID, Shelf: "want_to_read", Record: record})
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.False(t, again.Created)
	assert.Equal(t, res.BookID, again.BookID)
	assert.Equal(t, int64(1), f.count(t, "books"))
	assert.Equal(t, int64(1), f.count(t, "shelf_entries"))

	t.Run("非法书架不入库", func(t *testing.T) {
		other := record
		other.ExternalID = "another"
		_, err := f.addRecord.Execute(ctx, AddRecordRequest{UserID: f.reader.ID, Shelf: "nope", Record: other})
		assert.ErrorIs(t, err, shelf.ErrInvalidVariant)
		assert.Equal(t, int64(1), f.count(t, "books"))
	})

	t.Run("非法记录", func(t *testing.T) {
		_, err := f.addRecord.Execute(ctx, AddRecordRequest{UserID: f.reader.ID, Shelf: "read", Record: appbook.IngestRequest{Title: "x"}})
		assert.ErrorIs(t, err, book.ErrInvalidRecord)
	})
}

func TestAdd_UnknownUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	outliers := f.ingestBook(t, "ialrgIT41OAC", "Outliers")

	_, err := f.add.Execute(ctx, ShelfRequest{UserID: 999, BookID: outliers, Shelf: "read"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.addRecord.Execute(ctx, AddRecordRequest{
		UserID: 999,
		Shelf:  "read",
		Record: appbook.IngestRequest{ExternalID: "blink-id", Title: "Blink"},
	})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	assert.Equal(t, int64(0), f.count(t, "shelf_entries"))
	// 事务回滚，记录未入库
	assert.Equal(t, int64(1), f.count(t, "books"))
}

func TestSummary(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	outliers := f.ingestBook(t, "ialrgIT41OAC", "Outliers")
	blink := f.ingestBook(t, "blink-id", "Blink")

	for _, req := range []ShelfRequest{
		{UserID: f.reader.ID, BookID: outliers, Shelf: "read"},
		{UserID: f.reader.ID, BookID: blink, Shelf: "read"},
		{UserID: f.reader.ID, BookID: blink, Shelf: "favorite"},
	} {
		_, err := f.add.Execute(ctx, req)
		require.NoError(t, err)
	}

	counts, err := f.summary.Execute(ctx, f.reader.ID)
	require.NoError(t, err)
	assert.Equal(t, map[shelf.Variant]int64{
		shelf.WantToRead:       0,
		shelf.CurrentlyReading: 0,
		shelf.Read:             2,
		shelf.Favorite:         1,
	}, counts)
}
