package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/iabetor/newsdesk/internal/output"
	"github.com/spf13/cobra"
)

func newChatCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "与外勤记者的会话",
	}

	send := &cobra.Command{
		Use:   "send <text>",
		Short: "发送消息并等待自动回复",
		Args:  cobra.MinimumNArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			d := a.dispatcher()
			if _, err := d.SendChat(strings.Join(args, " ")); err != nil {
				return err
			}
			d.Wait()
			msgs := d.Messages()
			fmt.Fprintln(cmd.OutOrStdout(), msgs[len(msgs)-1].Text)
			return nil
		}),
	}

	var limit int
	log := &cobra.Command{
		Use:   "log",
		Short: "显示会话记录",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, args []string, a *app) error {
			msgs := a.dispatcher().Messages()
			if limit > 0 && len(msgs) > limit {
				msgs = msgs[len(msgs)-limit:]
			}
			table := output.NewTable(cmd.OutOrStdout(), "time", "from", "text")
			for _, m := range msgs {
				from := "المراسل"
				if m.FromMe {
					from = "أنا"
				}
				ts := time.UnixMilli(m.Timestamp).Format("01-02 15:04")
				table.AddRow(ts, from, m.Text)
			}
			return table.Render()
		}),
	}
	log.Flags().IntVarP(&limit, "limit", "n", 20, "最多显示的条数（0 表示全部）")

	cmd.AddCommand(send, log)
	return cmd
}
