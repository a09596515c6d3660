package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/iabetor/newsdesk/internal/output"
	"github.com/iabetor/newsdesk/internal/rss"
	"github.com/iabetor/newsdesk/internal/ticker"
	"github.com/spf13/cobra"
)

func newFeedsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "管理订阅源并抓取新闻滚动条",
	}

	var only string
	fetch := &cobra.Command{
		Use:   "fetch",
		Short: "抓取所有订阅源，保存并显示结果",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			if only == "" {
				return printItems(cmd, a.poller().Poll(cmd.Context()))
			}
			// 单个订阅源只显示，不覆盖已保存的滚动条
			src := a.sources.FindByName(only)
			if src == nil {
				return fmt.Errorf("未找到订阅源: %s", only)
			}
			return printItems(cmd, a.aggregator().FetchFeeds(cmd.Context(), []rss.Source{*src}))
		}),
	}
	fetch.Flags().StringVar(&only, "source", "", "只抓取名称匹配的订阅源（不区分大小写）")

	latest := &cobra.Command{
		Use:   "latest",
		Short: "显示最近一次抓取的结果",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			return printItems(cmd, a.poller().Latest())
		}),
	}

	watch := &cobra.Command{
		Use:   "watch",
		Short: "定时刷新并输出滚动条，Ctrl+C 退出",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			p := a.poller()
			p.OnUpdate = func(items []rss.Item) {
				fmt.Fprintln(cmd.OutOrStdout(), ticker.Format(items))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ticker.Format(p.Latest()))
			if err := p.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		}),
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "列出订阅源",
		Args:    cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			table := output.NewTable(cmd.OutOrStdout(), "id", "name", "url")
			for _, s := range a.sources.List() {
				table.AddRow(s.ID, s.Name, s.URL)
			}
			return table.Render()
		}),
	}

	add := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "添加订阅源",
		Args:  cobra.ExactArgs(2),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			src, err := a.sources.Add(rss.Source{Name: args[0], URL: args[1]})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已添加订阅源 %s (%s)\n", src.Name, src.ID)
			return nil
		}),
	}

	remove := &cobra.Command{
		Use:     "remove <id|name>",
		Aliases: []string{"rm"},
		Short:   "删除订阅源",
		Args:    cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			if !a.sources.Delete(args[0]) {
				return fmt.Errorf("未找到订阅源: %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已删除订阅源 %s\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(fetch, latest, watch, list, add, remove)
	return cmd
}

// printItems 输出带序号的条目表，序号供 article import-feed 使用。
func printItems(cmd *cobra.Command, items []rss.Item) error {
	fmt.Fprintln(cmd.OutOrStdout(), ticker.Format(items))
	if len(items) == 0 {
		return nil
	}
	table := output.NewTable(cmd.OutOrStdout(), "#", "source", "title", "link")
	for i, it := range items {
		table.AddRow(strconv.Itoa(i+1), it.Source, it.Title, it.Link)
	}
	return table.Render()
}
