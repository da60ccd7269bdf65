package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/linechat/internal/store"
	"github.com/vovakirdan/linechat/internal/store/sqlite"
)

func newSessionsCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Print the most recent sessions from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.JournalPath == "" {
				return errors.New("no journal configured: set journal_path or pass --journal")
			}

			st, err := sqlite.New(cfg.JournalPath)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer st.Close()

			sessions, err := st.RecentSessions(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			renderSessions(cmd.OutOrStdout(), sessions)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of sessions to show")
	return cmd
}

func renderSessions(w io.Writer, sessions []*store.Session) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Connected", "Transport", "Peer", "Name", "Duration", "Close reason"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, s := range sessions {
		duration := "open"
		if s.DisconnectedAt != nil {
			duration = s.DisconnectedAt.Sub(s.ConnectedAt).Round(time.Second).String()
		}
		name := s.Name
		if name == "" {
			name = "-"
		}
		table.Append([]string{
			s.ConnectedAt.Local().Format(time.DateTime),
			s.Transport,
			s.Peer,
			name,
			duration,
			s.CloseReason,
		})
	}
	table.Render()
}
