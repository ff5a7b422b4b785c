package extraction

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	catalog, err := NewCatalog([]Category{
		{Label: "Ventas", Code: "51000"},
		{Label: "Costos", Code: "41000"},
	})
	require.NoError(t, err)

	table := NewTable(catalog)
	table.Append("2023.pdf", catalog.ParseFinancialData("51000 Ventas 1,500,000\n41000 Costos 250"))
	table.Append("2024.pdf", catalog.ParseFinancialData("51000 Ventas 2,000"))
	return table
}

func TestTable_WriteCSV(t *testing.T) {
	table := testTable(t)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf, true))
	assert.Equal(t, "source,Ventas,Costos\n2023.pdf,1500000,250\n2024.pdf,2000,0\n", buf.String())

	buf.Reset()
	require.NoError(t, table.WriteCSV(&buf, false))
	assert.Equal(t, "Ventas,Costos\n1500000,250\n2000,0\n", buf.String())
}

func TestTable_WriteText(t *testing.T) {
	table := testTable(t)

	var buf bytes.Buffer
	require.NoError(t, table.WriteText(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "CATEGORY")
	assert.Contains(t, lines[0], "2023.pdf")
	assert.Contains(t, lines[1], "Ventas")
	assert.Contains(t, lines[1], "1,500,000")
	assert.Contains(t, lines[1], "2,000")
	assert.Contains(t, lines[2], "250")
}

func TestTable_WriteJSON(t *testing.T) {
	table := testTable(t)

	var buf bytes.Buffer
	require.NoError(t, table.WriteJSON(&buf))

	var decoded []struct {
		Source string           `json:"source"`
		Values map[string]int64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "2023.pdf", decoded[0].Source)
	assert.Equal(t, int64(1500000), decoded[0].Values["Ventas"])
	assert.Equal(t, int64(0), decoded[1].Values["Costos"])

	// Keys keep catalog order, not alphabetical order.
	assert.Less(t, strings.Index(buf.String(), `"Ventas"`), strings.Index(buf.String(), `"Costos"`))
}

func TestTable_Write(t *testing.T) {
	table := testTable(t)

	var buf bytes.Buffer
	assert.NoError(t, table.Write(&buf, "csv"))
	assert.True(t, strings.HasPrefix(buf.String(), "source,"))

	assert.Error(t, table.Write(&buf, "xlsx"))
}

func TestTable_Value(t *testing.T) {
	table := testTable(t)

	v, ok := table.Value(0, "Costos")
	assert.True(t, ok)
	assert.Equal(t, int64(250), v)

	_, ok = table.Value(5, "Costos")
	assert.False(t, ok)
	_, ok = table.Value(0, "Unknown")
	assert.False(t, ok)
}
