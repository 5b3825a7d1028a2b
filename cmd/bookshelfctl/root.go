package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bookshelfctl",
		Short: "bookshelfctl 维护Bookshelf数据库",
		Long: `bookshelfctl 是Bookshelf服务的运维工具：

  - migrate: 创建或更新表结构
  - import:  按关键词搜索Google Books并批量入库（可同时加入某个用户的书架）

配置优先级（从高到低）：
  1. 环境变量（BOOKSHELF_*，如BOOKSHELF_DATABASE_PASSWORD）
  2. --config指定的配置文件，默认config/config.yaml
  3. 内置默认值`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfgFile != "" {
				cfg, err = config.LoadFrom(cfgFile)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}

			_, err = logger.Init(logger.Config{
				Level:        cfg.Log.Level,
				Format:       cfg.Log.Format,
				Output:       cfg.Log.Output,
				EnableCaller: cfg.Log.EnableCaller,
			})
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"配置文件（默认 ./config/config.yaml）")

	rootCmd.AddCommand(getMigrateCmd())
	rootCmd.AddCommand(getImportCmd())

	return rootCmd
}
