package storage

import (
	"path/filepath"
	"testing"

	"github.com/iabetor/newsdesk/internal/database"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func openStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("打开数据库失败: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	return New(db)
}

func testKV(t *testing.T, kv KV) {
	t.Helper()

	var missing []record
	if kv.Load("absent", &missing) {
		t.Fatal("不存在的键应返回 false")
	}

	want := []record{{ID: "1", Name: "الوكالة المركزية"}, {ID: "2", Name: "القسم الرياضي"}}
	kv.Save(KeyAgencies, want)

	var got []record
	if !kv.Load(KeyAgencies, &got) {
		t.Fatal("Load 应返回 true")
	}
	if len(got) != 2 || got[1].Name != "القسم الرياضي" {
		t.Errorf("读取结果不匹配: %+v", got)
	}

	// 覆盖写入
	kv.Save(KeyAgencies, want[:1])
	got = nil
	kv.Load(KeyAgencies, &got)
	if len(got) != 1 {
		t.Errorf("覆盖后期望 1 条，得到 %d 条", len(got))
	}

	// 类型不匹配时保留默认值
	kv.Save(KeySettings, "not an object")
	def := record{ID: "default"}
	if kv.Load(KeySettings, &def) {
		t.Error("类型不匹配时应返回 false")
	}
	if def.ID != "default" {
		t.Errorf("失败时不应修改默认值: %+v", def)
	}
}

func TestStore(t *testing.T) {
	testKV(t, openStore(t))
}

func TestMemory(t *testing.T) {
	testKV(t, NewMemory())
}

func TestStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")

	db1, err := database.Open(path)
	if err != nil {
		t.Fatalf("打开数据库失败: %v", err)
	}
	if err := db1.Migrate(); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	New(db1).Save(KeyArticles, []record{{ID: "a1"}})
	db1.Close()

	db2, err := database.Open(path)
	if err != nil {
		t.Fatalf("重新打开数据库失败: %v", err)
	}
	defer db2.Close()

	var got []record
	if !New(db2).Load(KeyArticles, &got) || len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("重新打开后数据丢失: %+v", got)
	}
}

func TestLoadNonPointer(t *testing.T) {
	kv := NewMemory()
	kv.Save("k", 1)
	var n int
	if kv.Load("k", n) {
		t.Fatal("非指针目标应返回 false")
	}
}
