package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/csheth/papertalk/internal/archive"
	"github.com/csheth/papertalk/internal/chat"
)

var transcriptsCmd = &cobra.Command{
	Use:   "transcripts",
	Short: "Inspect transcripts saved with ctrl+s",
}

var transcriptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved transcripts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()
		summaries, err := store.List()
		if err != nil {
			return err
		}
		return printSummaries(cmd.OutOrStdout(), summaries)
	},
}

var transcriptsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print one saved transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()
		record, err := store.Load(args[0])
		if errors.Is(err, archive.ErrNotFound) {
			return fmt.Errorf("no transcript saved under %q (see 'papertalk transcripts list')", args[0])
		}
		if err != nil {
			return err
		}
		return printRecord(cmd.OutOrStdout(), record)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of papertalk",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "papertalk %s\n", version)
	},
}

func init() {
	transcriptsCmd.AddCommand(transcriptsListCmd, transcriptsShowCmd)
	rootCmd.AddCommand(transcriptsCmd, versionCmd)
}

func openArchive() (*archive.Store, error) {
	if settings.ArchivePath == "" {
		return nil, errors.New("transcript archive is disabled (archive.path is empty)")
	}
	return archive.Open(settings.ArchivePath)
}

func printSummaries(w io.Writer, summaries []archive.Summary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "No saved transcripts.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tMESSAGES\tSAVED\tTITLE")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", s.Key, s.Messages, s.SavedAt.Local().Format(time.DateTime), oneLine(s.Title))
	}
	return tw.Flush()
}

func printRecord(w io.Writer, record archive.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", oneLine(record.Paper.Title))
	if record.Paper.PaperID != "" {
		fmt.Fprintf(&b, "%s\n", record.Paper.PaperID)
	}
	fmt.Fprintf(&b, "saved %s\n", record.SavedAt.Local().Format(time.DateTime))
	for _, msg := range record.Messages {
		fmt.Fprintf(&b, "\n[%s]\n%s\n", speaker(msg.Role), strings.TrimSpace(msg.Content))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func speaker(role chat.Role) string {
	switch role {
	case chat.RoleHuman:
		return "you"
	case chat.RoleSystem:
		return "system"
	default:
		return "assistant"
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
