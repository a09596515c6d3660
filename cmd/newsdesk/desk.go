package main

import (
	"fmt"

	"github.com/iabetor/newsdesk/internal/output"
	"github.com/spf13/cobra"
)

func newAgencyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agency",
		Short: "管理新闻机构",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "列出机构",
			Args:    cobra.NoArgs,
			RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
				table := output.NewTable(cmd.OutOrStdout(), "id", "name", "categories")
				for _, ag := range a.desk.Agencies() {
					table.AddRow(ag.ID, ag.Name, fmt.Sprint(len(a.desk.Categories(ag.ID))))
				}
				return table.Render()
			}),
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "添加机构",
			Args:  cobra.ExactArgs(1),
			RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
				ag, err := a.desk.AddAgency(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "已添加机构 %s (%s)\n", ag.Name, ag.ID)
				return nil
			}),
		},
	)
	return cmd
}

func newCategoryCmd(c *cli) *cobra.Command {
	var agencyID string
	cmd := &cobra.Command{
		Use:   "category",
		Short: "管理机构下的分类",
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "列出分类（--agency 为空时列出全部）",
		Args:    cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			table := output.NewTable(cmd.OutOrStdout(), "id", "agency", "name", "articles")
			for _, cat := range a.desk.Categories(agencyID) {
				table.AddRow(cat.ID, cat.AgencyID, cat.Name, fmt.Sprint(len(a.desk.Articles(cat.ID))))
			}
			return table.Render()
		}),
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "在机构下添加分类",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			cat, err := a.desk.AddCategory(agencyID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已添加分类 %s (%s)\n", cat.Name, cat.ID)
			return nil
		}),
	}

	list.Flags().StringVar(&agencyID, "agency", "", "机构 ID")
	add.Flags().StringVar(&agencyID, "agency", "", "机构 ID")
	_ = add.MarkFlagRequired("agency")
	cmd.AddCommand(list, add)
	return cmd
}

func newSettingsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "查看或修改编辑台设置",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "显示当前设置",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			s := a.desk.Settings()
			table := output.NewTable(cmd.OutOrStdout(), "key", "value")
			table.AddRow("author", s.AuthorName)
			table.AddRow("tg-token", mask(s.TGToken))
			table.AddRow("tg-chat", s.TGChatID)
			return table.Render()
		}),
	}

	var author, token, chatID string
	set := &cobra.Command{
		Use:   "set",
		Short: "修改设置，只更新指定的项",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			s := a.desk.Settings()
			if cmd.Flags().Changed("author") {
				s.AuthorName = author
			}
			if cmd.Flags().Changed("tg-token") {
				s.TGToken = token
			}
			if cmd.Flags().Changed("tg-chat") {
				s.TGChatID = chatID
			}
			a.desk.UpdateSettings(s)
			fmt.Fprintln(cmd.OutOrStdout(), "设置已保存")
			return nil
		}),
	}
	set.Flags().StringVar(&author, "author", "", "署名使用的编辑姓名")
	set.Flags().StringVar(&token, "tg-token", "", "Telegram Bot Token")
	set.Flags().StringVar(&chatID, "tg-chat", "", "Telegram 会话 ID")

	cmd.AddCommand(show, set)
	return cmd
}

// mask 只显示 token 的末四位。
func mask(s string) string {
	if len(s) <= 4 {
		return s
	}
	return "****" + s[len(s)-4:]
}
