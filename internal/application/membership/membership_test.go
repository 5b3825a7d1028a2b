package membership

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/domain/review"
	"github.com/xiebiao/bookshelf/internal/domain/shelf"
	"github.com/xiebiao/bookshelf/internal/domain/user"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshelf/internal/testutil"
)

func TestFacade(t *testing.T) {
	db := testutil.InitMemoryDB(t)
	require.NoError(t, mysql.AutoMigrate(db))
	ctx := context.Background()

	bookRepo := mysql.NewBookRepository(db)
	shelfRepo := mysql.NewShelfRepository(db)
	reviewRepo := mysql.NewReviewRepository(db)
	facade := NewFacade(bookRepo, shelfRepo, reviewRepo)

	reader := user.NewUser("reader", "reader@example.com", "hash", "")
	require.NoError(t, mysql.NewUserRepository(db).Create(ctx, reader))

	b, _, err := book.NewNormalizer(bookRepo).Ingest(ctx, book.Record{
		ExternalID: "ialrgIT41OAC",
		Title:      "Outliers",
		Publisher:  "Penguin UK",
	})
	require.NoError(t, err)

	onShelf, err := facade.IsOnAnyShelf(ctx, reader.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, onShelf)

	reviewed, err := facade.HasReviewed(ctx, reader.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, reviewed)

	_, err = shelfRepo.Add(ctx, reader.ID, b.ID, shelf.Favorite)
	require.NoError(t, err)
	_, err = shelfRepo.Add(ctx, reader.ID, b.ID, shelf.WantToRead)
	require.NoError(t, err)
	r, err := review.NewReview(reader.ID, b.ID, 4, "")
	require.NoError(t, err)
	require.NoError(t, reviewRepo.Create(ctx, r))

	onShelf, err = facade.IsOnAnyShelf(ctx, reader.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, onShelf)

	reviewed, err = facade.HasReviewed(ctx, reader.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, reviewed)

	status, err := facade.BookStatus(ctx, reader.ID, "ialrgIT41OAC")
	require.NoError(t, err)
	assert.Equal(t, b.ID, status.BookID)
	assert.Equal(t, []shelf.Variant{shelf.Favorite, shelf.WantToRead}, status.Shelves)
	assert.True(t, status.IsOnShelf(shelf.Favorite))
	assert.False(t, status.IsOnShelf(shelf.Read))
	assert.True(t, status.Reviewed)

	t.Run("未入库图书返回零值", func(t *testing.T) {
		status, err := facade.BookStatus(ctx, reader.ID, "unknown")
		require.NoError(t, err)
		assert.Zero(t, status.BookID)
		assert.Empty(t, status.Shelves)
		assert.False(t, status.Reviewed)
	})

	t.Run("未登录", func(t *testing.T) {
		onShelf, err := facade.IsOnAnyShelf(ctx, 0, b.ID)
		require.NoError(t, err)
		assert.False(t, onShelf)

		status, err := facade.BookStatus(ctx, 0, "ialrgIT41OAC")
		require.NoError(t, err)
		assert.Equal(t, b.ID, status.BookID)
		assert.Empty(t, status.Shelves)
	})
}
