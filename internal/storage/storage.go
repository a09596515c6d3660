// Package storage 提供尽力而为的本地键值缓存，值以 JSON 保存。
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"reflect"
	"sync"

	"github.com/iabetor/newsdesk/internal/database"
	"github.com/iabetor/newsdesk/internal/logger"
)

// 编辑台使用的存储键。
const (
	KeyAgencies   = "jp_agencies"
	KeyCategories = "jp_categories"
	KeyArticles   = "jp_articles"
	KeySettings   = "jp_settings"
	KeySources    = "jp_rss_sources"
	KeyFeedItems  = "jp_rss_items"
	KeyChat       = "jp_chat"
)

// KV 是各模块依赖的持久化接口。
// Save 失败只记录日志；Load 在键不存在或无法解码时返回 false 且不修改 dst。
type KV interface {
	Save(key string, v any)
	Load(key string, dst any) bool
}

// Store 基于 SQLite kv_store 表的 KV 实现。
type Store struct {
	db *database.DB
}

// New 创建 Store，db 需已完成 Migrate。
func New(db *database.DB) *Store {
	return &Store{db: db}
}

// Save 序列化并写入 key。
func (s *Store) Save(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Errorf("[storage] 序列化 %s 失败: %v", key, err)
		return
	}
	_, err = s.db.Exec(`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(data))
	if err != nil {
		logger.Errorf("[storage] 保存 %s 失败: %v", key, err)
	}
}

// Load 读取 key 并解码到 dst。
func (s *Store) Load(key string, dst any) bool {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Warnf("[storage] 读取 %s 失败: %v", key, err)
		}
		return false
	}
	return decode(key, []byte(raw), dst)
}

// Memory 是进程内的 KV 实现，用于测试和临时会话。
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory 创建空的内存存储。
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Save(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Errorf("[storage] 序列化 %s 失败: %v", key, err)
		return
	}
	m.mu.Lock()
	m.data[key] = data
	m.mu.Unlock()
}

func (m *Memory) Load(key string, dst any) bool {
	m.mu.RLock()
	data, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return decode(key, data, dst)
}

// decode 先解码到同类型的临时值，成功后再写入 dst，失败时 dst 保持默认值。
func decode(key string, data []byte, dst any) bool {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		logger.Errorf("[storage] 解码 %s 失败: 目标必须是非空指针", key)
		return false
	}
	tmp := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(data, tmp.Interface()); err != nil {
		logger.Warnf("[storage] 解码 %s 失败，使用默认值: %v", key, err)
		return false
	}
	rv.Elem().Set(tmp.Elem())
	return true
}
