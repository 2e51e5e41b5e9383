// internal/report/jsonfile_test.go
//
// 測試目標：驗證報表 JSON 寫入與讀回、原子寫入不留暫存檔，以及文字格式。
// 使用 t.TempDir() 確保測試不汙染本機環境。
package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banksim/internal/bank"
	"banksim/internal/metrics"
)

func sample() Report {
	return Report{
		Phase:     "safe",
		Completed: true,
		Accounts: []bank.Balance{
			{ID: 1, Balance: 900},
			{ID: 2, Balance: 1100},
			{ID: 3, Balance: 1022.5},
		},
		Total:    3022.5,
		Expected: 3022.5,
		Outcomes: []metrics.OutcomeCount{{Op: bank.OpSafeTransfer, Outcome: bank.OutcomeOK, Count: 2}},
	}
}

// TestJSONReportRoundTrip 驗證 Save 寫出的檔案解碼後欄位一致且 Meta 被填入。
func TestJSONReportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	orig := sample()
	require.NoError(t, Save(path, orig))

	// 暫存檔已被 rename 取代
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "tmp file should not remain")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var loaded Report
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, "banksim_report", loaded.Meta.Format)
	assert.Equal(t, 1, loaded.Meta.Version)
	assert.False(t, loaded.Meta.Timestamp.IsZero())
	assert.Equal(t, orig.Accounts, loaded.Accounts)
	assert.Equal(t, orig.Outcomes, loaded.Outcomes)
	assert.True(t, loaded.Conserved())
}

// TestSaveIntoMissingDir 驗證目錄不存在時回傳錯誤。
func TestSaveIntoMissingDir(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "missing", "report.json"), sample())
	assert.Error(t, err)
}

// TestWriteText 驗證文字報表格式與金額的最短表示。
func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	r := sample()
	r.Meta.Note = "checked"
	require.NoError(t, WriteText(&buf, r))

	want := "\nFinal Account Balances:\n" +
		"Account 1: $900\n" +
		"Account 2: $1100\n" +
		"Account 3: $1022.5\n" +
		"Total: $3022.5 (expected $3022.5)\n" +
		"  safe_transfer ok: 2\n" +
		"Note: checked\n"
	assert.Equal(t, want, buf.String())
}
