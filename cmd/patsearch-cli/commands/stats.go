package commands

import (
	"os"
	"time"

	"patsearch-backend/lib/patentstore"
	"patsearch-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var statsDb *string

func init() {
	statsDb = statsCmd.Flags().String("db", "patents.db", "The patent store to summarize.")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats [--db <path/to/patents.db>]",
	Short: "Summarizes the contents of a patent store.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		store, err := patentstore.Open(*statsDb)
		if err != nil {
			serviceutil.Fatal("failed to open patent store", err)
		}
		defer store.Close()

		stats, err := store.Stats(ctx)
		if err != nil {
			serviceutil.Fatal("failed to read stats", err)
		}

		lastSearch := ""
		if !stats.LastSearch.IsZero() {
			lastSearch = stats.LastSearch.Format(time.ANSIC)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRows([]table.Row{
			{"Patents", stats.PatentCount},
			{"Searches", stats.SearchCount},
			{"Last search", lastSearch},
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
