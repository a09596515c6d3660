package rss

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/iabetor/newsdesk/internal/storage"
)

// SourceStore 订阅源列表，持久化在 storage.KeySources 下。
type SourceStore struct {
	mu      sync.RWMutex
	kv      storage.KV
	sources []Source
}

// NewSourceStore 加载已保存的订阅源；首次使用时写入 defaults。
func NewSourceStore(kv storage.KV, defaults []Source) *SourceStore {
	s := &SourceStore{kv: kv}
	if !kv.Load(storage.KeySources, &s.sources) {
		s.sources = append([]Source(nil), defaults...)
		s.save()
	}
	return s
}

func (s *SourceStore) save() {
	s.kv.Save(storage.KeySources, s.sources)
}

// Add 添加订阅源并返回带 ID 的副本。URL 已存在则返回错误。
func (s *SourceStore) Add(src Source) (Source, error) {
	src.Name = strings.TrimSpace(src.Name)
	src.URL = strings.TrimSpace(src.URL)
	if src.Name == "" || src.URL == "" {
		return Source{}, errors.New("订阅源名称和地址不能为空")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.sources {
		if existing.URL == src.URL {
			return Source{}, fmt.Errorf("该订阅源已存在: %s", existing.Name)
		}
	}
	if src.ID == "" {
		src.ID = uuid.NewString()
	}

	s.sources = append(s.sources, src)
	s.save()
	return src, nil
}

// List 列出所有订阅源。
func (s *SourceStore) List() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Source, len(s.sources))
	copy(result, s.sources)
	return result
}

// Delete 根据 ID 或名称（不区分大小写）删除订阅源。
func (s *SourceStore) Delete(idOrName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(idOrName)
	for i, src := range s.sources {
		if src.ID == idOrName || strings.ToLower(src.Name) == lower {
			s.sources = append(s.sources[:i], s.sources[i+1:]...)
			s.save()
			return true
		}
	}
	return false
}

// FindByName 按名称模糊查找订阅源。
func (s *SourceStore) FindByName(name string) *Source {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(name)
	for _, src := range s.sources {
		if strings.Contains(strings.ToLower(src.Name), lower) {
			result := src
			return &result
		}
	}
	return nil
}
