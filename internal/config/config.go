package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 是 newsdesk 的顶层配置结构。
type Config struct {
	Desk      DeskConfig      `yaml:"desk"`
	RSS       RSSConfig       `yaml:"rss"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Translate TranslateConfig `yaml:"translate"`
	Log       LogConfig       `yaml:"log"`
}

// DeskConfig 编辑台本地数据配置。
type DeskConfig struct {
	AuthorName string `yaml:"author_name"`
	DataDir    string `yaml:"data_dir"`
	// DBPath 为空时使用 DataDir/newsdesk.db。
	DBPath string `yaml:"db_path"`
	// NoSeed 为 true 时不写入内置的机构和分类。
	NoSeed bool `yaml:"no_seed"`
}

// RSSConfig 新闻滚动条订阅配置。
type RSSConfig struct {
	// RelayURL 跨域中转服务地址，设为 "-" 表示直连订阅源。
	RelayURL            string         `yaml:"relay_url"`
	PollIntervalSeconds int            `yaml:"poll_interval_seconds"`
	FetchTimeoutSeconds int            `yaml:"fetch_timeout_seconds"`
	Sources             []SourceConfig `yaml:"sources"`
}

// SourceConfig 单个订阅源。
type SourceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// TelegramConfig 外勤记者机器人配置。
type TelegramConfig struct {
	APIURL     string `yaml:"api_url"`
	Token      string `yaml:"token"`
	ChatID     string `yaml:"chat_id"`
	AckDelayMs int    `yaml:"ack_delay_ms"`
	AckText    string `yaml:"ack_text"`
}

// TranslateConfig 腾讯云标题翻译配置。
type TranslateConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SecretID   string `yaml:"secret_id"`
	SecretKey  string `yaml:"secret_key"`
	Region     string `yaml:"region"`
	TargetLang string `yaml:"target_lang"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// DefaultRelayURL 浏览器版本使用的公共 CORS 中转。
const DefaultRelayURL = "https://api.allorigins.win"

// DirectFetch 作为 relay_url 时表示不经中转直接抓取。
const DirectFetch = "-"

// DefaultSources 首次启动时写入的订阅源。
var DefaultSources = []SourceConfig{
	{ID: "1", Name: "BBC Arabic", URL: "https://feeds.bbci.co.uk/arabic/rss.xml"},
	{ID: "2", Name: "Al Jazeera", URL: "https://www.aljazeera.net/aljazeerarss/a7c186be-15b1-4320-8fdb-3222dbe2c3b1/x/1/rss"},
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// LoadOrDefault 在 path 为空或文件不存在时返回默认配置。
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("检查配置文件 %s 失败: %w", path, err)
		}
	}
	cfg := &Config{}
	setDefaults(cfg)
	return cfg, nil
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	if cfg.RSS.RelayURL == "" {
		cfg.RSS.RelayURL = DefaultRelayURL
	}
	if cfg.RSS.PollIntervalSeconds == 0 {
		cfg.RSS.PollIntervalSeconds = 60
	}
	if cfg.RSS.FetchTimeoutSeconds == 0 {
		cfg.RSS.FetchTimeoutSeconds = 10
	}
	if len(cfg.RSS.Sources) == 0 {
		cfg.RSS.Sources = append([]SourceConfig(nil), DefaultSources...)
	}
	if cfg.Telegram.APIURL == "" {
		cfg.Telegram.APIURL = "https://api.telegram.org"
	}
	if cfg.Telegram.AckDelayMs == 0 {
		cfg.Telegram.AckDelayMs = 1500
	}
	if cfg.Telegram.AckText == "" {
		cfg.Telegram.AckText = "تم الاستلام، سأقوم بالمتابعة."
	}
	if cfg.Translate.Region == "" {
		cfg.Translate.Region = "ap-guangzhou"
	}
	if cfg.Translate.TargetLang == "" {
		cfg.Translate.TargetLang = "ar"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Desk.DataDir == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.Desk.DataDir = filepath.Join(home, ".newsdesk")
		} else {
			cfg.Desk.DataDir = "./.newsdesk-data"
		}
	} else {
		cfg.Desk.DataDir = expandHome(cfg.Desk.DataDir)
	}
	if cfg.Desk.DBPath == "" {
		cfg.Desk.DBPath = filepath.Join(cfg.Desk.DataDir, "newsdesk.db")
	} else {
		cfg.Desk.DBPath = expandHome(cfg.Desk.DBPath)
	}
	cfg.Log.File = expandHome(cfg.Log.File)

	// 环境变量展开后常带有空白
	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	cfg.Telegram.ChatID = strings.TrimSpace(cfg.Telegram.ChatID)
	cfg.Translate.SecretID = strings.TrimSpace(cfg.Translate.SecretID)
	cfg.Translate.SecretKey = strings.TrimSpace(cfg.Translate.SecretKey)
}

// expandHome 将 ~/ 替换为用户主目录。
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return p
	}
	return filepath.Join(home, p[2:])
}
