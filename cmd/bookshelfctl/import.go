package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	appshelf "github.com/xiebiao/bookshelf/internal/application/shelf"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/googlebooks"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshelf/pkg/mq"
)

func getImportCmd() *cobra.Command {
	var (
		userID uint
		shelf  string
	)

	cmd := &cobra.Command{
		Use:   "import <query>",
		Short: "搜索Google Books并入库结果",
		Long: `按关键词搜索Google Books，把返回的每本书入库（已入库的跳过）。
指定--user和--shelf时同时加入该用户的书架。`,
		Example: `  bookshelfctl import "dune herbert"
  bookshelfctl import "tolkien" --user 1 --shelf want_to_read`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (userID == 0) != (shelf == "") {
				return fmt.Errorf("--user和--shelf必须同时指定")
			}

			db, err := mysql.NewDB(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
			if err != nil {
				return err
			}
			defer publisher.Close()

			bookRepo := mysql.NewBookRepository(db)
			ingest := appbook.NewIngestUseCase(book.NewNormalizer(bookRepo), mysql.NewTxManager(db), publisher)

			imp := &importer{
				catalog: googlebooks.NewClient(cfg.GoogleBooks),
				ingest:  ingest,
				out:     cmd.OutOrStdout(),
			}
			if shelf != "" {
				imp.addRecord = appshelf.NewAddRecordToShelfUseCase(ingest, mysql.NewShelfRepository(db), mysql.NewUserRepository(db), publisher)
				imp.userID = userID
				imp.shelf = shelf
			}

			result, err := imp.run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "完成：新入库%d本，已存在%d本，失败%d本\n",
				result.Created, result.Existing, result.Failed)
			return nil
		},
	}

	cmd.Flags().UintVar(&userID, "user", 0, "加入书架的用户ID")
	cmd.Flags().StringVar(&shelf, "shelf", "", "书架（want_to_read | currently_reading | read | favorite）")

	return cmd
}

type importResult struct {
	Created  int
	Existing int
	Failed   int
}

// importer 搜索结果逐条入库，单条失败不影响其余记录
type importer struct {
	catalog   appbook.Catalog
	ingest    *appbook.IngestUseCase
	addRecord *appshelf.AddRecordToShelfUseCase
	userID    uint
	shelf     string
	out       io.Writer
}

func (i *importer) run(ctx context.Context, query string) (*importResult, error) {
	volumes, err := i.catalog.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	result := &importResult{}
	for _, v := range volumes {
		created, err := i.importOne(ctx, v)
		if err != nil {
			result.Failed++
			logrus.WithError(err).WithField("volume_id", v.ID).Warn("入库失败")
			continue
		}
		if created {
			result.Created++
			fmt.Fprintf(i.out, "+ %s  %s\n", v.ID, v.Title)
		} else {
			result.Existing++
			fmt.Fprintf(i.out, "= %s  %s\n", v.ID, v.Title)
		}
	}
	return result, nil
}

func (i *importer) importOne(ctx context.Context, v googlebooks.Volume) (bool, error) {
	req := appbook.RequestFromRecord(v.Record())
	if i.addRecord == nil {
		_, created, err := i.ingest.Ingest(ctx, req, nil)
		return created, err
	}

	res, err := i.addRecord.Execute(ctx, appshelf.AddRecordRequest{
		UserID: i.userID,
		Shelf:  i.shelf,
		Record: req,
	})
	if err != nil {
		return false, err
	}
	return res.Created, nil
}
