package excel

import (
	"os"
	"path/filepath"
	"testing"

	"discscore/domain/discrepancy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadPair_CSV(t *testing.T) {
	path := writeCSV(t, "household, enumerator ,backcheck\nh1,12,10\nh2,7.5,8\n,,\nh4,3\n")

	sub, sup, err := ReadPair(PairConfig{FilePath: path, SubColumn: "enumerator", SupColumn: "backcheck"})
	require.NoError(t, err)
	require.Len(t, sub, 3)
	require.Len(t, sup, 3)
	assert.Equal(t, discrepancy.Num(12), sub[0])
	assert.Equal(t, discrepancy.Num(8), sup[1])
	// the short row keeps a blank supervisor cell
	assert.Equal(t, discrepancy.Label(""), sup[2])
}

func TestReadPair_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"id", "sub", "sup"},
		{1, "yes", "yes"},
		{2, "no", "yes"},
		{3, "yes", "yes"},
		{4, "no", "no"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "audit.xlsx")
	require.NoError(t, f.SaveAs(path))

	sub, sup, err := ReadPair(PairConfig{FilePath: path, SubColumn: "sub", SupColumn: "sup"})
	require.NoError(t, err)
	assert.Equal(t, discrepancy.Labels([]string{"yes", "no", "yes", "no"}), sub)
	assert.Equal(t, discrepancy.Labels([]string{"yes", "yes", "yes", "no"}), sup)
}

func TestReadPair_Errors(t *testing.T) {
	_, _, err := ReadPair(PairConfig{FilePath: filepath.Join(t.TempDir(), "missing.csv"), SubColumn: "a", SupColumn: "b"})
	assert.ErrorContains(t, err, "not found")

	path := writeCSV(t, "a,b\n1,2\n")
	_, _, err = ReadPair(PairConfig{FilePath: path, SubColumn: "a", SupColumn: "c"})
	assert.ErrorContains(t, err, `column "c" not found`)

	path = writeCSV(t, "a,b\n")
	_, _, err = ReadPair(PairConfig{FilePath: path, SubColumn: "a", SupColumn: "b"})
	assert.Error(t, err)

	_, _, err = ReadPair(PairConfig{FilePath: filepath.Join(t.TempDir(), "x.xlsx"), Sheet: "Other", SubColumn: "a", SupColumn: "b"})
	assert.Error(t, err)
}
