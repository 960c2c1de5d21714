package bench

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateStatsCompute(t *testing.T) {
	stats := AggregateStats{TotalReceived: 500, TotalTimeSeconds: 2}
	stats.Compute()
	require.Equal(t, 250.0, stats.AvgMsgRate)

	stats = AggregateStats{TotalReceived: 500}
	stats.Compute()
	require.Equal(t, 0.0, stats.AvgMsgRate)
}

func TestAggregateStatsSanityCheck(t *testing.T) {
	testCases := []struct {
		stats AggregateStats
		ok    bool
	}{
		{AggregateStats{TotalSent: 10, TotalReceived: 10}, true},
		{AggregateStats{TotalSent: 10, TotalReceived: 10, TotalDropped: 5}, true},
		{AggregateStats{TotalSent: 10, TotalReceived: 9}, false},
		{AggregateStats{TotalSent: 10, TotalReceived: 10, OrderViolations: 1}, false},
	}
	for i, tc := range testCases {
		err := tc.stats.SanityCheck()
		if tc.ok {
			require.NoError(t, err, "test case %d", i)
		} else {
			require.True(t, IsErrorCode(err, ErrStatsSanityCheckFailed), "test case %d", i)
		}
	}
}

func TestWriteAggregateStats(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "stats.csv")
	stats := AggregateStats{
		Producers:        2,
		TotalSent:        100,
		TotalReceived:    100,
		TotalTimeSeconds: 0.5,
	}
	require.NoError(t, writeAggregateStats(filename, stats))

	f, err := os.Open(filename)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"Parameter", "Value", "Units"}, records[0])

	values := make(map[string]string)
	for _, r := range records[1:] {
		values[r[0]] = r[1]
	}
	require.Equal(t, "0.500", values["total_time"])
	require.Equal(t, "2", values["producers"])
	require.Equal(t, "100", values["total_received"])
	require.Equal(t, "200.000000", values["avg_msg_rate"])
}
