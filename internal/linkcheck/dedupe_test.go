package linkcheck

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartitionKeepsFirstRecordPerURL(t *testing.T) {
	t.Parallel()

	records := []LinkRecord{
		{ID: "a1", URL: "https://a.example"},
		{ID: "a2", URL: "https://a.example"},
		{ID: "b1", URL: "https://b.example"},
		{ID: "a3", URL: "https://a.example"},
	}

	canonical, duplicates := Partition(records)

	require.Equal(t, []LinkRecord{records[0], records[2]}, canonical)
	require.Equal(t, []LinkRecord{records[1], records[3]}, duplicates)
}

func TestPartitionPassesEmptyURLsThrough(t *testing.T) {
	t.Parallel()

	records := []LinkRecord{
		{ID: "n1"},
		{ID: "n2"},
		{ID: "u1", URL: "https://a.example"},
	}

	canonical, duplicates := Partition(records)

	require.Len(t, canonical, 3)
	require.Empty(t, duplicates)
}

func TestPartitionUnionEqualsInput(t *testing.T) {
	t.Parallel()

	records := []LinkRecord{
		{ID: "1", URL: "https://a.example"},
		{ID: "2", URL: "https://b.example"},
		{ID: "3", URL: "https://a.example"},
		{ID: "4"},
		{ID: "5", URL: "https://b.example"},
		{ID: "6", URL: "https://c.example"},
	}

	canonical, duplicates := Partition(records)

	require.Len(t, canonical, len(records)-len(duplicates))

	seen := make(map[string]int)
	for _, rec := range canonical {
		seen[rec.ID]++
	}
	for _, rec := range duplicates {
		seen[rec.ID]++
	}
	require.Len(t, seen, len(records))
	for id, count := range seen {
		require.Equalf(t, 1, count, "record %s appeared %d times", id, count)
	}
}

func TestPartitionEmptyInput(t *testing.T) {
	t.Parallel()

	canonical, duplicates := Partition(nil)
	require.Empty(t, canonical)
	require.Empty(t, duplicates)
}
