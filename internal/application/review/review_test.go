package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/domain/review"
	"github.com/xiebiao/bookshelf/internal/domain/user"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshelf/internal/testutil"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/mq"
)

type fixture struct {
	repo   review.Repository
	tx     *mysql.TxManager
	create *CreateReviewUseCase
	update *UpdateReviewUseCase
	delete *DeleteReviewUseCase
	list   *ListReviewsUseCase
	author *user.User
	other  *user.User
	book   *book.Book
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.InitMemoryDB(t)
	require.NoError(t, mysql.AutoMigrate(db))
	ctx := context.Background()

	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	reviewRepo := mysql.NewReviewRepository(db)
	pub := mq.NopPublisher{}
	tx := mysql.NewTxManager(db)

	author := user.NewUser("author", "author@example.com", "hash", "")
	require.NoError(t, userRepo.Create(ctx, author))
	other := user.NewUser("other", "other@example.com", "hash", "")
	require.NoError(t, userRepo.Create(ctx, other))

	b, _, err := book.NewNormalizer(bookRepo).Ingest(ctx, book.Record{
		ExternalID: "ialrgIT41OAC",
		Title:      "Outliers",
		Publisher:  "Penguin UK",
	})
	require.NoError(t, err)

	return &fixture{
		repo:   reviewRepo,
		tx:     tx,
		create: NewCreateReviewUseCase(reviewRepo, bookRepo, tx, pub),
		update: NewUpdateReviewUseCase(reviewRepo, tx, pub),
		delete: NewDeleteReviewUseCase(reviewRepo, tx, pub),
		list:   NewListReviewsUseCase(reviewRepo, userRepo, bookRepo),
		author: author,
		other:  other,
		book:   b,
	}
}

func TestCreateReview(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	info, err := f.create.Execute(ctx, CreateReviewRequest{UserID: f.author.ID, BookID: f.book.ID, Rating: 5, Text: "Great"})
	require.NoError(t, err)
	assert.Equal(t, "author", info.Username)
	assert.Equal(t, "Outliers", info.BookTitle)
	assert.Equal(t, 5, info.Rating)

	t.Run("同一用户不能重复评价", func(t *testing.T) {
		_, err := f.create.Execute(ctx, CreateReviewRequest{UserID: f.author.ID, BookID: f.book.ID, Rating: 3})
		assert.ErrorIs(t, err, review.ErrAlreadyReviewed)
	})

	t.Run("评分范围", func(t *testing.T) {
		for _, rating := range []int{0, 6, -1} {
			_, err := f.create.Execute(ctx, CreateReviewRequest{UserID: f.other.ID, BookID: f.book.ID, Rating: rating})
			assert.ErrorIs(t, err, review.ErrInvalidRating)
		}
	})

	t.Run("图书不存在", func(t *testing.T) {
		_, err := f.create.Execute(ctx, CreateReviewRequest{UserID: f.other.ID, BookID: 999, Rating: 3})
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("未登录", func(t *testing.T) {
		_, err := f.create.Execute(ctx, CreateReviewRequest{BookID: f.book.ID, Rating: 3})
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestUpdateAndDeleteReview(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	info, err := f.create.Execute(ctx, CreateReviewRequest{UserID: f.author.ID, BookID: f.book.ID, Rating: 3, Text: "OK"})
	require.NoError(t, err)

	_, err = f.update.Execute(ctx, UpdateReviewRequest{UserID: f.other.ID, ReviewID: info.ID, Rating: 1})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.update.Execute(ctx, UpdateReviewRequest{UserID: f.author.ID, ReviewID: info.ID, Rating: 9})
	assert.ErrorIs(t, err, review.ErrInvalidRating)

	_, err = f.update.Execute(ctx, UpdateReviewRequest{UserID: f.author.ID, ReviewID: 999, Rating: 4})
	assert.ErrorIs(t, err, review.ErrReviewNotFound)

	updated, err := f.update.Execute(ctx, UpdateReviewRequest{UserID: f.author.ID, ReviewID: info.ID, Rating: 4, Text: "Better on reread"})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, "Better on reread", updated.Text)

	byBook, err := f.list.ByBook(ctx, f.book.ID)
	require.NoError(t, err)
	require.Len(t, byBook, 1)
	assert.Equal(t, 4, byBook[0].Rating)

	assert.ErrorIs(t, f.delete.Execute(ctx, f.other.ID, info.ID), apperrors.ErrForbidden)
	assert.ErrorIs(t, f.delete.Execute(ctx, 0, info.ID), apperrors.ErrUnauthorized)
	require.NoError(t, f.delete.Execute(ctx, f.author.ID, info.ID))
	assert.ErrorIs(t, f.delete.Execute(ctx, f.author.ID, info.ID), review.ErrReviewNotFound)

	// 删除后可以重新评价
	_, err = f.create.Execute(ctx, CreateReviewRequest{UserID: f.author.ID, BookID: f.book.ID, Rating: 2})
	require.NoError(t, err)
}

// failAfterWrite 写入成功后返回错误，用于验证事务回滚
type failAfterWrite struct {
	review.Repository
	err error
}

func (r failAfterWrite) Update(ctx context.Context, rv *review.Review) error {
	if err := r.Repository.Update(ctx, rv); err != nil {
		return err
	}
	return r.err
}

func (r failAfterWrite) Delete(ctx context.Context, id uint) error {
	if err := r.Repository.Delete(ctx, id); err != nil {
		return err
	}
	return r.err
}

func TestReviewWritesAreTransactional(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	boom := apperrors.New(apperrors.ErrCodeInternal, "boom")

	info, err := f.create.Execute(ctx, CreateReviewRequest{UserID: f.author.ID, BookID: f.book.ID, Rating: 3, Text: "OK"})
	require.NoError(t, err)

	repo := failAfterWrite{Repository: f.repo, err: boom}

	_, err = NewUpdateReviewUseCase(repo, f.tx, mq.NopPublisher{}).Execute(ctx,
		UpdateReviewRequest{UserID: f.author.ID, ReviewID: info.ID, Rating: 5, Text: "changed"})
	assert.ErrorIs(t, err, boom)

	err = NewDeleteReviewUseCase(repo, f.tx, mq.NopPublisher{}).Execute(ctx, f.author.ID, info.ID)
	assert.ErrorIs(t, err, boom)

	got, err := f.repo.FindByID(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Rating)
	assert.Equal(t, "OK", got.Text)
}

func TestListReviews(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.create.Execute(ctx, CreateReviewRequest{UserID: f.author.ID, BookID: f.book.ID, Rating: 5})
	require.NoError(t, err)
	_, err = f.create.Execute(ctx, CreateReviewRequest{UserID: f.other.ID, BookID: f.book.ID, Rating: 2})
	require.NoError(t, err)

	byUser, err := f.list.ByUser(ctx, f.other.ID)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, 2, byUser[0].Rating)

	byBook, err := f.list.ByBook(ctx, f.book.ID)
	require.NoError(t, err)
	assert.Len(t, byBook, 2)

	_, err = f.list.ByUser(ctx, 999)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	_, err = f.list.ByBook(ctx, 999)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}
