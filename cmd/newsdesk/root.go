package main

import (
	"fmt"

	"github.com/iabetor/newsdesk/internal/config"
	"github.com/iabetor/newsdesk/internal/logger"
	"github.com/spf13/cobra"
)

// cli 保存命令之间共享的全局选项。
type cli struct {
	cfgPath string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "newsdesk",
		Short: "新闻编辑台：订阅源滚动条、稿件草稿与外勤记者会话",
		Long: `newsdesk 是面向新闻编辑部的命令行编辑台。

示例:
  newsdesk feeds fetch                     # 抓取所有订阅源并显示滚动条
  newsdesk feeds watch                     # 每隔 poll_interval_seconds 刷新一次
  newsdesk article new --cat 101           # 在分类下新建草稿
  newsdesk article import-feed --cat 101 3 # 把滚动条第 3 条导入为草稿
  newsdesk article send <id>               # 发送给外勤记者`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}
	root.PersistentFlags().StringVar(&c.cfgPath, "config", "configs/newsdesk.yaml", "配置文件路径（不存在时使用默认配置）")

	root.AddCommand(
		newFeedsCmd(c),
		newAgencyCmd(c),
		newCategoryCmd(c),
		newArticleCmd(c),
		newChatCmd(c),
		newSettingsCmd(c),
	)
	return root
}

func (c *cli) init() error {
	cfg, err := config.LoadOrDefault(c.cfgPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	c.cfg = cfg
	logger.Debugf("[main] 配置已加载 (data_dir=%s)", cfg.Desk.DataDir)
	return nil
}

// run 为命令打开编辑台数据，命令结束后关闭。
func (c *cli) run(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(c.cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}
