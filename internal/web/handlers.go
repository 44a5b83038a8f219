package web

import (
	"bytes"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allanpk716/contract_filler/internal/catalog"
	"github.com/allanpk716/contract_filler/internal/domain"
	"github.com/allanpk716/contract_filler/internal/form"
	"github.com/allanpk716/contract_filler/internal/history"
)

// defaultFilename 用户未填写文件名时使用
const defaultFilename = "contract"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, http.StatusOK, "")
}

func (s *Server) handleChoose(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, http.StatusBadRequest, "表单解析失败")
		return
	}

	name := strings.TrimSpace(r.PostFormValue("template"))
	if _, err := catalog.Resolve(s.templatesDir, name); err != nil {
		s.renderIndex(w, http.StatusBadRequest, "请选择有效的模板")
		return
	}

	http.Redirect(w, r, "/fill/"+url.PathEscape(name), http.StatusSeeOther)
}

func (s *Server) handleFillForm(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("template")
	tags, ok := s.loadTags(w, name)
	if !ok {
		return
	}

	s.renderFill(w, http.StatusOK, name, tags, nil, nil, defaultFilename, "")
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("template")
	tags, ok := s.loadTags(w, name)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "表单解析失败", http.StatusBadRequest)
		return
	}

	values := make(map[string]string, len(tags))
	for _, tag := range tags {
		values[tag] = r.PostFormValue(inputName(tag))
	}
	rawFilename := r.PostFormValue("filename")
	if strings.TrimSpace(rawFilename) == "" {
		rawFilename = defaultFilename
	}

	fields, err := form.Collect(tags, values)
	if err != nil {
		var missing *domain.FieldMissingError
		if errors.As(err, &missing) {
			s.renderFill(w, http.StatusUnprocessableEntity, name, tags, values, missing.Fields, rawFilename, err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filename, err := form.OutputFileName(rawFilename)
	if err != nil {
		s.renderFill(w, http.StatusUnprocessableEntity, name, tags, values, nil, rawFilename, "文件名不能为空")
		return
	}

	// 每次请求使用独立目录，避免并发请求互相覆盖
	outDir := filepath.Join(s.outputDir, uuid.NewString())
	if err := os.MkdirAll(outDir, 0755); err != nil {
		s.logger.Error("创建输出目录失败", zap.String("dir", outDir), zap.Error(err))
		http.Error(w, "无法创建输出目录", http.StatusInternalServerError)
		return
	}
	outputPath := filepath.Join(outDir, filename)

	templatePath := filepath.Join(s.templatesDir, name)
	result, err := s.processor.FillTemplate(r.Context(), templatePath, fields, outputPath)
	if err != nil {
		s.logger.Error("填充模板失败", zap.String("template", name), zap.Error(err))
		os.RemoveAll(outDir)
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInput) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	s.logger.Info("合同已生成",
		zap.String("template", name),
		zap.String("output", outputPath),
		zap.Int("replacements", result.Replacements))

	if s.history != nil {
		_, err := s.history.Record(r.Context(), history.Entry{
			Template:     name,
			OutputPath:   outputPath,
			TagCount:     len(tags),
			Replacements: result.Replacements,
		})
		if err != nil {
			s.logger.Warn("写入历史记录失败", zap.Error(err))
		}
	}

	s.sendFile(w, r, outputPath, filename)
}

// loadTags 解析模板并提取占位符，失败时直接写出错误响应
func (s *Server) loadTags(w http.ResponseWriter, name string) ([]string, bool) {
	path, err := catalog.Resolve(s.templatesDir, name)
	if err != nil {
		http.Error(w, "模板不存在", http.StatusNotFound)
		return nil, false
	}

	tags, err := s.processor.ExtractTags(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.Error(w, "模板不存在", http.StatusNotFound)
			return nil, false
		}
		s.logger.Warn("模板无法解析", zap.String("template", name), zap.Error(err))
		http.Error(w, "模板无法解析", http.StatusBadRequest)
		return nil, false
	}
	return tags, true
}

func (s *Server) sendFile(w http.ResponseWriter, r *http.Request, path, filename string) {
	f, err := os.Open(path)
	if err != nil {
		s.logger.Error("读取输出文件失败", zap.String("path", path), zap.Error(err))
		http.Error(w, "读取输出文件失败", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "读取输出文件失败", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", DocxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

func (s *Server) renderIndex(w http.ResponseWriter, status int, message string) {
	templates, err := s.lister()
	if err != nil {
		s.logger.Error("读取模板列表失败", zap.Error(err))
		http.Error(w, "读取模板列表失败", http.StatusInternalServerError)
		return
	}

	s.render(w, status, "index.html", indexPage{
		Title:     "合同生成",
		Error:     message,
		Templates: templates,
	})
}

func (s *Server) renderFill(w http.ResponseWriter, status int, name string, tags []string, values map[string]string, missing []string, filename, message string) {
	missingSet := make(map[string]bool, len(missing))
	for _, m := range missing {
		missingSet[m] = true
	}

	fields := make([]fieldView, len(tags))
	for i, tag := range tags {
		fields[i] = fieldView{
			Name:    tag,
			Input:   inputName(tag),
			Value:   values[tag],
			Missing: missingSet[tag],
		}
	}

	s.render(w, status, "fill.html", fillPage{
		Title:    name,
		Error:    message,
		Action:   "/fill/" + url.PathEscape(name),
		Fields:   fields,
		Filename: filename,
	})
}

// render 先渲染到缓冲区，模板出错时不会写出半个页面
func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := renderPage(&buf, s.pages, page, data); err != nil {
		s.logger.Error("渲染页面失败", zap.String("page", page), zap.Error(err))
		http.Error(w, "渲染页面失败", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
