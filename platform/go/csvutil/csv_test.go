package csvutil

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeQuotesEveryField(t *testing.T) {
	got := Encode([]string{"id", "summary"}, [][]string{{"1", "plain"}, {"2", ""}})
	require.Equal(t, "\"id\",\"summary\"\r\n\"1\",\"plain\"\r\n\"2\",\"\"\r\n", got)
}

func TestEncodeDoublesQuotes(t *testing.T) {
	got := Encode([]string{"summary"}, [][]string{{`renamed "Gold" plan`}})
	require.Equal(t, "\"summary\"\r\n\"renamed \"\"Gold\"\" plan\"\r\n", got)
}

func TestEncodeHeadersOnly(t *testing.T) {
	require.Equal(t, "\"a\",\"b\"\r\n", Encode([]string{"a", "b"}, nil))
}

func TestEncodeReadsBack(t *testing.T) {
	rows := [][]string{
		{"1", "comma, inside", "line\nbreak"},
		{"2", `"quoted"`, "=SUM(A1:A2)"},
	}
	out := Encode([]string{"id", "summary", "note"}, rows)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Equal(t, append([][]string{{"id", "summary", "note"}}, rows...), records)
}
