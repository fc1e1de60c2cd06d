package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"patsearch-backend/lib/driver/roddriver"
	"patsearch-backend/lib/export"
	"patsearch-backend/lib/patentstore"
	"patsearch-backend/lib/restyutil"
	"patsearch-backend/lib/scrapers/patentscope"
	"patsearch-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	searchBaseUrl    *string
	searchPageSize   *int
	searchMax        *int
	searchCountries  *[]string
	searchDateStart  *string
	searchDateEnd    *string
	searchJsonOut    *string
	searchCsvOut     *string
	searchDb         *string
	searchDumpResty  *bool
	searchAllVariant *bool
	searchBrowser    *bool
)

func init() {
	searchBaseUrl = searchCmd.Flags().String("base-url", "", "Override the portal base url.")
	searchPageSize = searchCmd.Flags().Int("page-size", 10, "Results per portal page.")
	searchMax = searchCmd.Flags().Int("max", 50, "Maximum number of results to collect.")
	searchCountries = searchCmd.Flags().StringSlice("country", nil, "Restrict to country codes (e.g. US,EP,WO).")
	searchDateStart = searchCmd.Flags().String("date-start", "", "Publication date lower bound (YYYY-MM-DD).")
	searchDateEnd = searchCmd.Flags().String("date-end", "", "Publication date upper bound (YYYY-MM-DD).")
	searchJsonOut = searchCmd.Flags().String("json", "", "Write results grouped by publication number to this JSON file.")
	searchCsvOut = searchCmd.Flags().String("csv", "", "Write results as a flat table to this CSV file.")
	searchDb = searchCmd.Flags().String("db", "", "Also push results into this patent store.")
	searchDumpResty = searchCmd.Flags().Bool("dump-resty", false, "Dump raw portal exchanges to .dev/resty/search.")
	searchAllVariant = searchCmd.Flags().Bool("all-variants", false, "Crawl every term variant of the input concurrently.")
	searchBrowser = searchCmd.Flags().Bool("browser", false, "Paginate through a headless browser instead of plain HTTP.")
	rootCmd.AddCommand(searchCmd)
}

func newPager(ctx context.Context) patentscope.Pager {
	if *searchBrowser {
		session, err := roddriver.New(roddriver.Options{})
		if err != nil {
			serviceutil.Fatal("failed to launch browser", err)
		}
		return patentscope.NewDriverPager(session, *searchBaseUrl)
	}

	client, err := patentscope.NewClient(ctx, patentscope.ClientOptions{
		BaseURL: *searchBaseUrl,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize portal client", err)
	}
	return patentscope.NewHttpPager(client)
}

func crawl(ctx context.Context, input string) patentscope.CrawlResult {
	if *searchAllVariant {
		factory := func(ctx context.Context, _ string) (patentscope.Pager, error) {
			return newPager(ctx), nil
		}
		return patentscope.CrawlTerms(
			ctx, factory,
			patentscope.TermVariants(input),
			*searchPageSize, *searchMax,
		)
	}

	spec := patentscope.NewSearchSpec(input, *searchPageSize, *searchMax)
	spec.Countries = *searchCountries
	spec.DateStart = *searchDateStart
	spec.DateEnd = *searchDateEnd
	crawler := &patentscope.Crawler{Pager: newPager(ctx)}
	return crawler.Run(ctx, spec)
}

func renderRecords(records []patentscope.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Publication", "Title", "Date", "Applicants"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.PublicationNumber,
			r.Title,
			r.PublicationDate,
			strings.Join(r.Applicants, "; "),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

var searchCmd = &cobra.Command{
	Use:   "search <molecule>",
	Short: "Crawls the portal for patents mentioning a molecule and prints them.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if *searchDumpResty {
			patentscope.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/search"))
		}

		t1 := time.Now()
		result := crawl(ctx, args[0])
		elapsed := time.Since(t1)

		if result.Err != nil {
			slog.Warn("crawl ended early, results may be partial", "err", result.Err)
		}
		slog.Info("crawl finished",
			"records", len(result.Records),
			"pages", result.Pages,
			"stop_reason", result.StopReason.String(),
			"seconds", elapsed.Seconds(),
		)

		renderRecords(result.Records)

		sourceQuery := ""
		if len(result.Records) > 0 {
			sourceQuery = result.Records[0].SourceQuery
		}
		if *searchJsonOut != "" {
			doc := export.NewDocument(result.Records, sourceQuery, t1)
			if err := export.WriteJSONFile(*searchJsonOut, doc); err != nil {
				serviceutil.Fatal("failed to write json export", err)
			}
		}
		if *searchCsvOut != "" {
			if err := export.WriteCSVFile(*searchCsvOut, result.Records); err != nil {
				serviceutil.Fatal("failed to write csv export", err)
			}
		}
		if *searchDb != "" {
			store, err := patentstore.Open(*searchDb)
			if err != nil {
				serviceutil.Fatal("failed to open patent store", err)
			}
			defer store.Close()
			if err := store.PushRecords(ctx, result.Records, t1); err != nil {
				serviceutil.Fatal("failed to push records", err)
			}
		}
	},
}
