package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/allanpk716/contract_filler/internal/catalog"
	"github.com/allanpk716/contract_filler/internal/domain"
	"github.com/allanpk716/contract_filler/internal/history"
	"github.com/allanpk716/contract_filler/internal/processor"
)

// DocxContentType DOCX 文件的 MIME 类型
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Options 创建 Web 服务的参数
type Options struct {
	TemplatesDir string
	OutputDir    string
	// Lister 返回可选模板列表，为空时每次请求都读取 TemplatesDir
	Lister    func() ([]string, error)
	Processor domain.DocumentProcessor
	History   *history.Store
	Logger    *zap.Logger
}

// Server 合同填写 Web 表单
type Server struct {
	templatesDir string
	outputDir    string
	lister       func() ([]string, error)
	processor    domain.DocumentProcessor
	history      *history.Store
	logger       *zap.Logger
	pages        *template.Template
}

// NewServer 创建 Web 服务
func NewServer(opts Options) (*Server, error) {
	if opts.TemplatesDir == "" {
		return nil, fmt.Errorf("模板目录不能为空")
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("输出目录不能为空")
	}

	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("解析页面模板失败: %w", err)
	}

	s := &Server{
		templatesDir: opts.TemplatesDir,
		outputDir:    opts.OutputDir,
		lister:       opts.Lister,
		processor:    opts.Processor,
		history:      opts.History,
		logger:       opts.Logger,
		pages:        pages,
	}
	if s.lister == nil {
		s.lister = func() ([]string, error) { return catalog.List(s.templatesDir) }
	}
	if s.processor == nil {
		s.processor = processor.NewDocumentProcessor()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s, nil
}

// Handler 返回路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleChoose)
	mux.HandleFunc("GET /fill/{template}", s.handleFillForm)
	mux.HandleFunc("POST /fill/{template}", s.handleFill)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.logRequests(mux)
}

// ListenAndServe 监听 addr 并提供服务，ctx 取消后优雅关闭
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve 在给定的 listener 上提供服务，ctx 取消后优雅关闭
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Web 服务启动", zap.String("address", "http://"+ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("正在关闭 Web 服务")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// statusRecorder 记录响应状态码
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("请求完成",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
