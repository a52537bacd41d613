package tracker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/domain/confluence"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/domain/quality"
)

func testRecord(symbol string, ts time.Time) Record {
	rec := NewRecord(symbol, confluence.Result{
		Score:      55.0,
		ScoreBase:  60.0,
		Confidence: 0.5,
	}, quality.Decision{Filtered: false, Reason: quality.ReasonNone})
	rec.Timestamp = ts
	return rec
}

func TestSink_AppendPartitionsByUTCDay(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewSink(dir)
	require.NoError(t, err)
	defer sink.Close()

	day1 := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)

	require.NoError(t, sink.Append(testRecord("BTC-USD", day1)))
	require.NoError(t, sink.Append(testRecord("BTC-USD", day2)))

	_, err = os.Stat(filepath.Join(dir, "quality_2026-03-01.jsonl"))
	assert.NoError(t, err, "day 1 partition should exist")
	_, err = os.Stat(filepath.Join(dir, "quality_2026-03-02.jsonl"))
	assert.NoError(t, err, "day 2 partition should exist")
}

func TestSink_ScanRangeAndSymbol(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewSink(dir)
	require.NoError(t, err)
	defer sink.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, sink.Append(testRecord("BTC-USD", base)))
	require.NoError(t, sink.Append(testRecord("ETH-USD", base.Add(time.Minute))))
	require.NoError(t, sink.Append(testRecord("BTC-USD", base.Add(48*time.Hour))))

	var all []Record
	err = sink.Scan(base.Add(-time.Hour), base.Add(72*time.Hour), "", func(rec Record) error {
		all = append(all, rec)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	var btcOnly []Record
	err = sink.Scan(base.Add(-time.Hour), base.Add(time.Hour), "BTC-USD", func(rec Record) error {
		btcOnly = append(btcOnly, rec)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, btcOnly, 1)
	assert.Equal(t, "BTC-USD", btcOnly[0].Symbol)
}

func TestSink_ScanMissingPartitionsTolerated(t *testing.T) {
	sink, err := NewSink(t.TempDir())
	require.NoError(t, err)
	defer sink.Close()

	count := 0
	err = sink.Scan(time.Now().Add(-48*time.Hour), time.Now(), "", func(Record) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSink_ScanSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewSink(dir)
	require.NoError(t, err)
	defer sink.Close()

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, sink.Append(testRecord("BTC-USD", ts)))

	// Simulate a torn write at the tail of the partition
	path := filepath.Join(dir, "quality_2026-03-01.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"id":"trunc`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	count := 0
	err = sink.Scan(ts.Add(-time.Hour), ts.Add(time.Hour), "", func(Record) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count, "the valid record survives, the torn line is skipped")
}
