package logger

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, 期望 %v", tc.in, got, tc.want)
		}
	}
}

func TestReplaceRestores(t *testing.T) {
	before := L
	core, logs := observer.New(zapcore.WarnLevel)
	restore := Replace(zap.New(core))

	Warnf("[test] %s", "hello")
	Infof("[test] 不应记录")

	if logs.Len() != 1 {
		t.Fatalf("期望 1 条日志，得到 %d 条", logs.Len())
	}
	if msg := logs.All()[0].Message; msg != "[test] hello" {
		t.Errorf("日志内容不匹配: %s", msg)
	}

	restore()
	if L != before {
		t.Error("restore 后应恢复原 logger")
	}
}

func TestInitWithFile(t *testing.T) {
	restore := Replace(Z)
	defer restore()

	file := filepath.Join(t.TempDir(), "logs", "newsdesk.log")
	if err := Init(Config{Level: "debug", File: file}); err != nil {
		t.Fatalf("Init 失败: %v", err)
	}
	Info("[test] 写入文件")
	Sync()
}

func TestInitInvalidLevel(t *testing.T) {
	if err := Init(Config{Level: "loud"}); err == nil {
		t.Fatal("期望无效级别返回错误")
	}
}
