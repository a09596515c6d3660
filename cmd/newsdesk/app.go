package main

import (
	"fmt"
	"time"

	"github.com/iabetor/newsdesk/internal/config"
	"github.com/iabetor/newsdesk/internal/database"
	"github.com/iabetor/newsdesk/internal/desk"
	"github.com/iabetor/newsdesk/internal/logger"
	"github.com/iabetor/newsdesk/internal/rss"
	"github.com/iabetor/newsdesk/internal/storage"
	"github.com/iabetor/newsdesk/internal/telegram"
	"github.com/iabetor/newsdesk/internal/ticker"
	"github.com/iabetor/newsdesk/internal/translate"
)

// app 按配置组装好的编辑台组件。
type app struct {
	cfg     *config.Config
	db      *database.DB
	kv      storage.KV
	sources *rss.SourceStore
	desk    *desk.Desk
}

func openApp(cfg *config.Config) (*app, error) {
	db, err := database.Open(cfg.Desk.DBPath)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	kv := storage.New(db)

	defaults := make([]rss.Source, 0, len(cfg.RSS.Sources))
	for _, s := range cfg.RSS.Sources {
		defaults = append(defaults, rss.Source{ID: s.ID, Name: s.Name, URL: s.URL})
	}

	d := desk.New(kv, !cfg.Desk.NoSeed)
	if s := d.Settings(); s.AuthorName == "" && cfg.Desk.AuthorName != "" {
		s.AuthorName = cfg.Desk.AuthorName
		d.UpdateSettings(s)
	}
	if cfg.Translate.Enabled {
		tr, err := translate.NewTencent(cfg.Translate.SecretID, cfg.Translate.SecretKey, cfg.Translate.Region)
		if err != nil {
			logger.Warnf("[main] 翻译未启用: %v", err)
		} else {
			d.SetTranslator(tr, cfg.Translate.TargetLang)
		}
	}

	return &app{
		cfg:     cfg,
		db:      db,
		kv:      kv,
		sources: rss.NewSourceStore(kv, defaults),
		desk:    d,
	}, nil
}

func (a *app) aggregator() *rss.Aggregator {
	relay := a.cfg.RSS.RelayURL
	if relay == config.DirectFetch {
		relay = ""
	}
	return rss.NewAggregator(relay, time.Duration(a.cfg.RSS.FetchTimeoutSeconds)*time.Second)
}

func (a *app) poller() *ticker.Poller {
	interval := time.Duration(a.cfg.RSS.PollIntervalSeconds) * time.Second
	return ticker.NewPoller(a.aggregator(), a.sources, interval, a.kv)
}

// dispatcher 编辑台设置中的 Token 和会话 ID 优先于配置文件。
func (a *app) dispatcher() *telegram.Dispatcher {
	s := a.desk.Settings()
	token, chatID := a.cfg.Telegram.Token, a.cfg.Telegram.ChatID
	if s.TGToken != "" {
		token = s.TGToken
	}
	if s.TGChatID != "" {
		chatID = s.TGChatID
	}

	var sender telegram.Sender
	if token != "" {
		sender = telegram.NewClient(a.cfg.Telegram.APIURL, token)
	}
	return telegram.NewDispatcher(a.kv, sender, telegram.DispatcherConfig{
		ChatID:   chatID,
		AckDelay: time.Duration(a.cfg.Telegram.AckDelayMs) * time.Millisecond,
		AckText:  a.cfg.Telegram.AckText,
	})
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		logger.Warnf("[main] 关闭数据库失败: %v", err)
	}
	logger.Sync()
}
