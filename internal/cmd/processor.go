package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/allanpk716/contract_filler/internal/catalog"
	"github.com/allanpk716/contract_filler/internal/domain"
	"github.com/allanpk716/contract_filler/internal/form"
)

// FillSingleFile 填充单个模板
// allowPartial 为 false 时模板中的每个占位符都必须有非空值
func FillSingleFile(ctx context.Context, docProcessor domain.DocumentProcessor, inputFile, outputFile string, values map[string]string, allowPartial bool, logger *zap.Logger) (*domain.FillResult, error) {
	logger.Info("处理文件", zap.String("input", inputFile), zap.String("output", outputFile))

	tags, err := docProcessor.ExtractTags(inputFile)
	if err != nil {
		return nil, err
	}

	fields := values
	if !allowPartial {
		fields, err = form.Collect(tags, values)
		if err != nil {
			return nil, err
		}
	}

	// 确保输出目录存在
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return nil, &domain.StorageError{Path: outputFile, Err: fmt.Errorf("创建输出目录失败: %w", err)}
	}

	result, err := docProcessor.FillTemplate(ctx, inputFile, fields, outputFile)
	if err != nil {
		return nil, err
	}

	if len(result.Unfilled) > 0 {
		logger.Warn("存在未填充的占位符", zap.Strings("tags", result.Unfilled))
	}
	logger.Info("文件处理完成", zap.String("output", outputFile), zap.Int("replacements", result.Replacements))
	return result, nil
}

// ProcessBatchFiles 批量处理目录下的所有模板，单个文件失败不影响其余文件
func ProcessBatchFiles(ctx context.Context, docProcessor domain.DocumentProcessor, inputDir, outputDir string, fields map[string]string, logger *zap.Logger) (*domain.BatchResult, error) {
	// 创建输出目录
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	// 查找所有 DOCX 文件
	docxFiles, err := catalog.FindDocxFiles(inputDir)
	if err != nil {
		return nil, fmt.Errorf("查找 DOCX 文件失败: %w", err)
	}

	if len(docxFiles) == 0 {
		return nil, fmt.Errorf("在目录 %s 中没有找到 DOCX 文件", inputDir)
	}

	logger.Info("找到 DOCX 文件", zap.Int("count", len(docxFiles)))

	result := &domain.BatchResult{}
	for i, inputFile := range docxFiles {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		// 生成输出文件路径
		relPath, err := filepath.Rel(inputDir, inputFile)
		if err != nil {
			return result, fmt.Errorf("计算相对路径失败: %w", err)
		}
		outputFile := filepath.Join(outputDir, relPath)

		// 确保输出文件的目录存在
		if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
			return result, fmt.Errorf("创建输出文件目录失败: %w", err)
		}

		logger.Info("处理文件", zap.Int("index", i+1), zap.Int("total", len(docxFiles)), zap.String("input", inputFile))

		fillResult, err := docProcessor.FillTemplate(ctx, inputFile, fields, outputFile)
		if err != nil {
			logger.Error("处理文件失败", zap.String("input", inputFile), zap.Error(err))
			result.FailedFiles++
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", inputFile, err))
			continue
		}

		result.ProcessedFiles++
		result.Replacements += fillResult.Replacements
		if len(fillResult.Unfilled) > 0 {
			logger.Warn("存在未填充的占位符", zap.String("input", inputFile), zap.Strings("tags", fillResult.Unfilled))
		}
		logger.Info("文件处理完成", zap.String("output", outputFile))
	}

	logger.Info("批量处理完成",
		zap.Int("processed", result.ProcessedFiles),
		zap.Int("failed", result.FailedFiles),
		zap.Int("replacements", result.Replacements))
	return result, nil
}

// documentTagCount 文档中出现的不同占位符数量
func documentTagCount(result *domain.FillResult) int {
	count := len(result.Unfilled)
	for _, st := range result.Stats {
		if st.Occurrences > 0 {
			count++
		}
	}
	return count
}
