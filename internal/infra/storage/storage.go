package storage

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/webprojects1100/rolyo/internal/config"
)

// Store 对象存储接口，商品图片的上传/列举/删除/取 URL
type Store interface {
	Upload(ctx context.Context, key string, data []byte) error
	List(ctx context.Context, prefix string) ([]string, error)
	Remove(ctx context.Context, keys []string) error
	PublicURL(key string) string
}

// DiskStore 本地磁盘实现，key 映射为 Root 下的相对路径
type DiskStore struct {
	root    string
	baseURL string
}

var (
	store *DiskStore
	once  sync.Once
)

// Init 初始化对象存储
func Init(cfg *config.StorageConfig) *DiskStore {
	once.Do(func() {
		s, err := NewDiskStore(cfg.Root, cfg.PublicBaseURL)
		if err != nil {
			log.Fatalf("failed to init storage: %v", err)
		}
		store = s
	})
	return store
}

// NewDiskStore 创建磁盘存储，根目录不存在时自动建
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &DiskStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// keyPath 把对象 key 转成磁盘路径，拒绝越出根目录的 key
func (s *DiskStore) keyPath(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *DiskStore) Upload(ctx context.Context, key string, data []byte) error {
	p, err := s.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (s *DiskStore) List(ctx context.Context, prefix string) ([]string, error) {
	dir, err := s.keyPath(prefix)
	if err != nil {
		return nil, err
	}
	var keys []string
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if os.IsNotExist(err) {
		// 前缀下没有对象不算错误
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *DiskStore) Remove(ctx context.Context, keys []string) error {
	for _, key := range keys {
		p, err := s.keyPath(key)
		if err != nil {
			return err
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (s *DiskStore) PublicURL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}
