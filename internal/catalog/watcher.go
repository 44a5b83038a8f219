package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher 监听模板目录，变化后刷新缓存的模板列表
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	dir         string
	logger      *zap.Logger
	templates   []string
	debounceDur time.Duration
	pending     bool
	lastEvent   time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher 创建目录监听器，并读取一次初始列表
func NewWatcher(dir string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	templates, err := List(dir)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:     watcher,
		dir:         dir,
		logger:      logger,
		templates:   templates,
		debounceDur: 200 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Templates 返回当前缓存的模板列表
func (w *Watcher) Templates() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, len(w.templates))
	copy(out, w.templates)
	return out
}

// Start 开始监听，非阻塞
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Info("开始监听模板目录", zap.String("dir", w.dir))

	go w.run(ctx)
	return nil
}

// Stop 停止监听并等待后台协程退出
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("关闭目录监听失败", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("模板目录监听出错", zap.Error(err))
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !IsTemplateName(filepath.Base(event.Name)) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
		return
	}

	w.logger.Debug("模板目录变化", zap.String("file", event.Name), zap.String("op", event.Op.String()))

	w.mu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.mu.Unlock()
}

// flush 在静默 debounceDur 之后重新读取目录
func (w *Watcher) flush() {
	w.mu.RLock()
	ready := w.pending && time.Since(w.lastEvent) >= w.debounceDur
	w.mu.RUnlock()
	if !ready {
		return
	}

	templates, err := List(w.dir)
	if err != nil {
		w.logger.Warn("刷新模板列表失败", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.templates = templates
	w.pending = false
	w.mu.Unlock()

	w.logger.Info("模板列表已刷新", zap.Int("count", len(templates)))
}
