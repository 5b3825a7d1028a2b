package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/mysql"
)

func getMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "创建或更新表结构",
		RunE: func(cmd *cobra.Command, args []string) error {
			// NewDB连接成功后执行AutoMigrate
			db, err := mysql.NewDB(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			logrus.WithField("driver", cfg.Database.Driver).Info("表结构迁移完成")
			return nil
		},
	}
}
