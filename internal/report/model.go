// internal/report/model.go
//
// 定義「階段報表 (phase report)」的結構模型。
// 每個示範階段結束後產生一份報表：最終餘額、總額、各操作結果計數。
// 報表只是一次執行的輸出，不會被讀回成帳戶狀態（本系統不跨執行保存帳戶）。
package report

import (
	"time"

	"banksim/internal/bank"
	"banksim/internal/metrics"
)

// Meta 為報表的中繼資料，記錄格式、版本與建立時間。
type Meta struct {
	Format    string    `json:"format"`         // 固定為 "banksim_report"
	Version   int       `json:"version"`        // 結構版本號
	Timestamp time.Time `json:"timestamp"`      // 報表建立時間
	Note      string    `json:"note,omitempty"` // 備註，例如死鎖診斷
}

// Report 為單一階段的執行結果。
type Report struct {
	Meta      Meta                   `json:"_meta"`
	Phase     string                 `json:"phase"`
	Completed bool                   `json:"completed"` // false 代表 worker 未在期限內全部結束（死鎖）
	Elapsed   time.Duration          `json:"elapsed_ns"`
	Accounts  []bank.Balance         `json:"accounts"`
	Total     float64                `json:"total"`
	Expected  float64                `json:"expected_total"` // 只含轉帳的階段，Total 應等於此值
	Outcomes  []metrics.OutcomeCount `json:"outcomes,omitempty"`
}

// Conserved 回報總額是否等於預期總額。
func (r Report) Conserved() bool {
	return r.Total == r.Expected
}
