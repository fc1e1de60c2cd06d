package commands

import (
	"os"
	"strings"

	"patsearch-backend/lib/scrapers/patentscope"
	"patsearch-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var detailBaseUrl *string

func init() {
	detailBaseUrl = detailCmd.Flags().String("base-url", "", "Override the portal base url.")
	rootCmd.AddCommand(detailCmd)
}

var detailCmd = &cobra.Command{
	Use:   "detail <publication-number>",
	Short: "Fetches the full detail view of one patent.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client, err := patentscope.NewClient(ctx, patentscope.ClientOptions{
			BaseURL: *detailBaseUrl,
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize portal client", err)
		}

		detail, err := client.FetchDetail(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("failed to fetch detail", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRows([]table.Row{
			{"Publication", detail.PublicationNumber},
			{"Title", detail.Title},
			{"Published", detail.PublicationDate},
			{"Application", detail.ApplicationNumber},
			{"Filed", detail.ApplicationDate},
			{"Applicants", strings.Join(detail.Applicants, "; ")},
			{"Inventors", strings.Join(detail.Inventors, "; ")},
			{"IPC", strings.Join(detail.IPCCodes, "; ")},
			{"CPC", strings.Join(detail.CPCCodes, "; ")},
			{"Abstract", detail.Abstract},
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
