package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/allanpk716/contract_filler/internal/config"
	"github.com/allanpk716/contract_filler/internal/domain"
	"github.com/allanpk716/contract_filler/internal/history"
	"github.com/allanpk716/contract_filler/internal/logging"
	"github.com/allanpk716/contract_filler/internal/processor"
)

// app 命令共享的状态，在 PersistentPreRunE 中初始化
type app struct {
	configPath   string
	templatesDir string
	verbose      bool

	settings  *config.Settings
	logger    *zap.Logger
	processor domain.DocumentProcessor
}

// NewRootCommand 创建根命令及全部子命令
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           AppName,
		Short:         "用字段值填充 DOCX 合同模板中的 {占位符}",
		Version:       AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultSettingsFile, "配置文件路径")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "详细输出")
	root.PersistentFlags().StringVar(&a.templatesDir, "templates-dir", "", "模板目录（覆盖配置文件）")

	root.AddCommand(
		newTemplatesCommand(a),
		newTagsCommand(a),
		newFillCommand(a),
		newBatchCommand(a),
		newValidateCommand(a),
		newServeCommand(a),
		newFormCommand(a),
		newHistoryCommand(a),
	)
	return root
}

// Execute 执行命令，错误在这里统一输出一次
func Execute(ctx context.Context, stderr io.Writer) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) init() error {
	settings, err := config.LoadSettings(a.configPath)
	if err != nil {
		return err
	}
	if a.templatesDir != "" {
		settings.TemplatesDir = a.templatesDir
	}
	if a.verbose {
		settings.Log.Level = "debug"
	}
	a.settings = settings

	logger, err := logging.New(settings.Log.Level, settings.Log.Format)
	if err != nil {
		return err
	}
	a.logger = logger
	a.processor = processor.NewDocumentProcessor()
	return nil
}

// openHistory 未配置 history_db 时返回 nil
func (a *app) openHistory() (*history.Store, error) {
	if a.settings.HistoryDB == "" {
		return nil, nil
	}
	return history.Open(a.settings.HistoryDB)
}

// recordHistory 写入历史记录，失败只记录日志
func (a *app) recordHistory(ctx context.Context, entry history.Entry) {
	store, err := a.openHistory()
	if err != nil {
		a.logger.Warn("打开历史数据库失败", zap.Error(err))
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	if _, err := store.Record(ctx, entry); err != nil {
		a.logger.Warn("写入历史记录失败", zap.Error(err))
	}
}
