package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/allanpk716/contract_filler/internal/catalog"
	"github.com/allanpk716/contract_filler/internal/history"
	"github.com/allanpk716/contract_filler/internal/tui"
	"github.com/allanpk716/contract_filler/internal/web"
)

// templatePath 参数既可以是文件路径，也可以是模板目录中的名称
func (a *app) templatePath(arg string) (string, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return arg, nil
	}
	return catalog.Resolve(a.settings.TemplatesDir, arg)
}

func newTemplatesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "列出模板目录中的模板",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := catalog.List(a.settings.TemplatesDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(templates) == 0 {
				fmt.Fprintf(out, "目录 %s 中没有模板\n", a.settings.TemplatesDir)
				return nil
			}
			for _, name := range templates {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

func newTagsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <template>",
		Short: "列出模板中的占位符",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.templatePath(args[0])
			if err != nil {
				return err
			}
			tags, err := a.processor.ExtractTags(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tags) == 0 {
				fmt.Fprintln(out, "no fields to fill")
				return nil
			}
			for _, tag := range tags {
				fmt.Fprintln(out, tag)
			}
			return nil
		},
	}
}

func newFillCommand(a *app) *cobra.Command {
	var (
		fieldsFile   string
		assignments  []string
		outputFile   string
		allowPartial bool
	)

	cmd := &cobra.Command{
		Use:   "fill <template>",
		Short: "填充单个模板",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.templatePath(args[0])
			if err != nil {
				return err
			}
			values, err := LoadFieldValues(fieldsFile, assignments)
			if err != nil {
				return err
			}
			if outputFile == "" {
				// 自动生成输出文件名
				outputFile = GenerateOutputFileName(path)
			}

			ctx := cmd.Context()
			result, err := FillSingleFile(ctx, a.processor, path, outputFile, values, allowPartial, a.logger)
			if err != nil {
				return err
			}

			a.recordHistory(ctx, history.Entry{
				Template:     filepath.Base(path),
				OutputPath:   outputFile,
				TagCount:     documentTagCount(result),
				Replacements: result.Replacements,
			})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "已生成: %s (替换 %d 处)\n", result.OutputPath, result.Replacements)
			for _, st := range result.Stats {
				fmt.Fprintf(out, "  %s: %d (正文 %d, 表格 %d)\n", st.Tag, st.Occurrences, st.InParagraphs, st.InTables)
			}
			if len(result.Unfilled) > 0 {
				fmt.Fprintf(out, "未填充: %v\n", result.Unfilled)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fieldsFile, "fields", "f", "", "字段值文件（JSON 或 YAML）")
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "字段值 KEY=VALUE，可重复")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "输出文件路径（默认 <模板>_filled.docx）")
	cmd.Flags().BoolVar(&allowPartial, "allow-partial", false, "允许部分字段为空")
	return cmd
}

func newBatchCommand(a *app) *cobra.Command {
	var (
		inputDir    string
		outputDir   string
		fieldsFile  string
		assignments []string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "批量填充目录中的所有模板",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputDir == "" {
				inputDir = a.settings.TemplatesDir
			}
			if outputDir == "" {
				// 自动生成输出目录名
				outputDir = inputDir + "_filled"
			}
			values, err := LoadFieldValues(fieldsFile, assignments)
			if err != nil {
				return err
			}

			result, err := ProcessBatchFiles(cmd.Context(), a.processor, inputDir, outputDir, values, a.logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "批量处理完成: 成功 %d, 失败 %d, 替换 %d 处\n",
				result.ProcessedFiles, result.FailedFiles, result.Replacements)
			if result.FailedFiles > 0 {
				return fmt.Errorf("%d 个文件处理失败: %w", result.FailedFiles, errors.Join(result.Errors...))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input-dir", "", "输入目录（默认模板目录）")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "输出目录（默认 <输入目录>_filled）")
	cmd.Flags().StringVarP(&fieldsFile, "fields", "f", "", "字段值文件（JSON 或 YAML）")
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "字段值 KEY=VALUE，可重复")
	return cmd
}

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <template>",
		Short: "检查模板能否被正确解析",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.templatePath(args[0])
			if err != nil {
				return err
			}
			if err := a.processor.ValidateDocument(path); err != nil {
				return err
			}
			tags, err := a.processor.ExtractTags(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: 有效，包含 %d 个占位符\n", filepath.Base(path), len(tags))
			return nil
		},
	}
}

func newServeCommand(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 Web 表单",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.settings.Listen
			}
			ctx := cmd.Context()

			store, err := a.openHistory()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			opts := web.Options{
				TemplatesDir: a.settings.TemplatesDir,
				OutputDir:    a.settings.OutputDir,
				Processor:    a.processor,
				History:      store,
				Logger:       a.logger,
			}

			if a.settings.WatchTemplates {
				watcher, err := catalog.NewWatcher(a.settings.TemplatesDir, a.logger)
				if err != nil {
					return err
				}
				if err := watcher.Start(ctx); err != nil {
					return err
				}
				defer watcher.Stop()
				opts.Lister = func() ([]string, error) { return watcher.Templates(), nil }
			}

			server, err := web.NewServer(opts)
			if err != nil {
				return err
			}
			return server.ListenAndServe(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "监听地址（覆盖配置文件）")
	return cmd
}

func newFormCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "启动终端填写向导",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			return tui.Run(cmd.Context(), tui.Options{
				TemplatesDir: a.settings.TemplatesDir,
				OutputDir:    a.settings.OutputDir,
				Processor:    a.processor,
				History:      store,
				Logger:       a.logger,
			})
		},
	}
}

func newHistoryCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "显示最近的填充记录",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("未配置 history_db")
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "暂无记录")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %s -> %s  (%d 个占位符, 替换 %d 处)\n",
					e.CreatedAt.Format(time.DateTime), e.Template, e.OutputPath, e.TagCount, e.Replacements)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "显示条数")
	return cmd
}
