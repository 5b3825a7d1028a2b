package book

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/mq"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// IngestUseCase 外部记录入库用例
// 1. 请求结构校验（validator）
// 2. 在一个事务中执行领域入库（可附带同一事务内的后续操作，如加入书架）
// 3. 唯一索引冲突或死锁说明有并发入库，事务回滚后重跑一次，读到已提交的图书
// 4. 新建图书时发布book.ingested事件
type IngestUseCase struct {
	normalizer book.Normalizer
	txManager  *mysql.TxManager
	publisher  mq.Publisher
	validate   *validator.Validate
}

// NewIngestUseCase 创建入库用例
func NewIngestUseCase(normalizer book.Normalizer, txManager *mysql.TxManager, publisher mq.Publisher) *IngestUseCase {
	return &IngestUseCase{
		normalizer: normalizer,
		txManager:  txManager,
		publisher:  publisher,
		validate:   validator.New(),
	}
}

// IngestRequest 入库请求
// 长度按字符数计算，与领域层规范化一致
type IngestRequest struct {
	ExternalID string   `validate:"required,max=64"`
	Title      string   `validate:"required,max=255"`
	Subtitle   string   `validate:"max=255"`
	CoverURL   string   `validate:"max=2048"`
	Authors    []string `validate:"dive,max=255"`
	Categories []string `validate:"dive,max=255"`
	Publisher  string   `validate:"required,max=255"`
}

// Record 转换为领域记录
func (r IngestRequest) Record() book.Record {
	return book.Record{
		ExternalID: r.ExternalID,
		Title:      r.Title,
		Subtitle:   r.Subtitle,
		CoverURL:   r.CoverURL,
		Authors:    r.Authors,
		Categories: r.Categories,
		Publisher:  r.Publisher,
	}
}

// RequestFromRecord 领域记录 → 入库请求
func RequestFromRecord(rec book.Record) IngestRequest {
	return IngestRequest{
		ExternalID: rec.ExternalID,
		Title:      rec.Title,
		Subtitle:   rec.Subtitle,
		CoverURL:   rec.CoverURL,
		Authors:    rec.Authors,
		Categories: rec.Categories,
		Publisher:  rec.Publisher,
	}
}

// IngestResponse 入库响应
type IngestResponse struct {
	Book    *BookInfo `json:"book"`
	Created bool      `json:"created"` // false表示图书已存在，原样返回
}

// Execute 执行入库
func (uc *IngestUseCase) Execute(ctx context.Context, req IngestRequest) (*IngestResponse, error) {
	b, created, err := uc.Ingest(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	return &IngestResponse{Book: ToBookInfo(b), Created: created}, nil
}

// Ingest 入库并在同一事务中执行then（then为nil时只入库）
// then返回错误时整个事务回滚，图书也不会入库
func (uc *IngestUseCase) Ingest(
	ctx context.Context,
	req IngestRequest,
	then func(ctx context.Context, b *book.Book) error,
) (b *book.Book, created bool, err error) {
	ctx, span := tracing.StartSpan(ctx, "book.Ingest", attribute.String("external_id", req.ExternalID))
	defer func() { tracing.EndSpan(span, err) }()

	// 1. 请求结构校验
	if verr := uc.validate.Struct(req); verr != nil {
		metrics.ObserveIngest("invalid")
		return nil, false, book.ErrInvalidRecord.WithCause(verr)
	}

	// 2. 事务内入库
	rec := req.Record()
	run := func(ctx context.Context) error {
		got, isNew, err := uc.normalizer.Ingest(ctx, rec)
		if err != nil {
			return err
		}
		if then != nil {
			if err := then(ctx, got); err != nil {
				return err
			}
		}
		b, created = got, isNew
		return nil
	}

	err = uc.txManager.Transaction(ctx, run)
	if errors.Is(err, apperrors.ErrDuplicateKey) || errors.Is(err, apperrors.ErrTxConflict) {
		// 3. 并发冲突，重跑一次
		logrus.WithField("external_id", rec.ExternalID).WithError(err).Debug("入库冲突，重试")
		err = uc.txManager.Transaction(ctx, run)
	}
	if err != nil {
		if errors.Is(err, book.ErrInvalidRecord) {
			metrics.ObserveIngest("invalid")
		} else {
			metrics.ObserveIngest("error")
		}
		return nil, false, err
	}

	// 4. 事务已提交，发布事件
	if created {
		metrics.ObserveIngest("created")
		mq.PublishAsync(ctx, uc.publisher, mq.EventBookIngested, map[string]interface{}{
			"book_id":     b.ID,
			"external_id": b.ExternalID,
			"title":       b.Title,
		})
	} else {
		metrics.ObserveIngest("existing")
	}
	return b, created, nil
}
