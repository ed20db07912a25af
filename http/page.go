package http

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

//go:embed static/index.html
var embeddedIndex []byte

// PageSource 首页HTML来源
type PageSource interface {
	Page() ([]byte, error)
}

// EmbeddedPage 编译进二进制的首页
type EmbeddedPage struct{}

func (EmbeddedPage) Page() ([]byte, error) {
	return embeddedIndex, nil
}

// FilePage 每次请求都从磁盘读取
type FilePage struct {
	Path string
}

func (p FilePage) Page() ([]byte, error) {
	return readPage(p.Path)
}

// WatchedFilePage 缓存页面内容，文件变化时重新读取
type WatchedFilePage struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	mu      sync.RWMutex
	content []byte
	err     error

	done chan struct{}
}

// NewWatchedFilePage 读取页面并开始监听所在目录
func NewWatchedFilePage(path string, logger *zap.Logger) (*WatchedFilePage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	content, err := readPage(abs)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// 监听目录而非文件，编辑器保存时常常是替换文件
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	p := &WatchedFilePage{
		path:    abs,
		watcher: watcher,
		logger:  logger,
		content: content,
		done:    make(chan struct{}),
	}
	go p.watch()
	return p, nil
}

func (p *WatchedFilePage) Page() ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.content, p.err
}

// Close 停止监听
func (p *WatchedFilePage) Close() error {
	err := p.watcher.Close()
	<-p.done
	return err
}

func (p *WatchedFilePage) watch() {
	defer close(p.done)
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			content, err := readPage(p.path)
			p.mu.Lock()
			if err == nil {
				p.content = content
			}
			p.err = err
			p.mu.Unlock()
			if err != nil {
				p.logger.Warn("index page unavailable", zap.String("path", p.path), zap.Error(err))
			} else {
				p.logger.Info("index page reloaded", zap.String("path", p.path))
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("index page watcher error", zap.Error(err))
		}
	}
}

// readPage 读取UTF-8页面，去掉BOM
func readPage(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page %s: %w", path, err)
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return nil, fmt.Errorf("decode page %s: %w", path, err)
	}
	return decoded, nil
}
