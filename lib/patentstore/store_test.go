package patentstore

import (
	"context"
	"testing"
	"time"

	"patsearch-backend/lib/scrapers/patentscope"
	"patsearch-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "patentstore",
		DbSchema: Schema,
	})
	defer cleanup()

	store := NewStore(res.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		_, found, err := store.GetRecord(ctx, "WO2024123456")
		require.NoError(t, err)
		require.False(t, found)
	}

	record := patentscope.Record{
		ID:                "WO2024123456",
		PublicationNumber: "WO2024123456",
		Title:             "Enzymatic synthesis of glucose polymers",
		Abstract:          "A process in which glucose is polymerized.",
		Applicants:        []string{"Acme Chemical Co."},
		Inventors:         []string{"Jane Roe"},
		IPCCodes:          []string{"C08B 37/00"},
		PublicationDate:   "2024-03-14",
		SourceQuery:       `EN_AB:"C6H12O6"`,
	}
	scrapedAt := time.Now()

	{
		err := store.PushRecords(ctx, []patentscope.Record{record}, scrapedAt)
		require.NoError(t, err)

		got, found, err := store.GetRecord(ctx, "WO2024123456")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, record, got)
	}
	{
		// pushing again with updated fields overwrites, not duplicates
		record.Title = "Enzymatic synthesis of glucose polymers (amended)"
		err := store.PushRecords(ctx, []patentscope.Record{record}, scrapedAt.Add(time.Hour))
		require.NoError(t, err)

		records, err := store.RecentRecords(ctx, 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, record.Title, records[0].Title)
	}
	{
		err := store.LogSearch(ctx, SearchLog{
			RawInput:     "C6H12O6",
			Query:        `EN_AB:"C6H12O6"`,
			TotalResults: 23,
			RecordCount:  1,
			Pages:        3,
			StopReason:   "limit_reached",
			Duration:     1800 * time.Millisecond,
			CreatedAt:    scrapedAt,
		})
		require.NoError(t, err)

		stats, err := store.Stats(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, stats.PatentCount)
		require.Equal(t, 1, stats.SearchCount)
		require.Equal(t, scrapedAt.Unix(), stats.LastSearch.Unix())
	}
}
