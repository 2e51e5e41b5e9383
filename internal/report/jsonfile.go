// internal/report/jsonfile.go
//
// 提供報表的 JSON 輸出，以及給人看的文字格式。
// 寫檔採「原子寫入」：先寫入 .tmp 檔，再以 rename() 取代原檔，
// 中途失敗不會留下半份報表。
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

const (
	format  = "banksim_report"
	version = 1
)

// Save 將報表序列化為 JSON 檔案，並採原子方式寫入。
// 流程：
//  1. 設定 Meta.Format、Meta.Version 與當前時間戳。
//  2. 寫入 path+".tmp" 暫存檔。
//  3. 寫入完成後使用 os.Rename() 取代正式檔案。
func Save(path string, r Report) error {
	r.Meta.Format = format
	r.Meta.Version = version
	r.Meta.Timestamp = time.Now()
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	// 原子替換
	return os.Rename(tmp, path)
}

// WriteText 輸出最終餘額報表：
//
//	Final Account Balances:
//	Account 1: $900
//	...
//	Total: $5000
func WriteText(w io.Writer, r Report) error {
	if _, err := fmt.Fprintf(w, "\nFinal Account Balances:\n"); err != nil {
		return err
	}
	for _, a := range r.Accounts {
		if _, err := fmt.Fprintf(w, "Account %d: $%s\n", a.ID, money(a.Balance)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Total: $%s (expected $%s)\n", money(r.Total), money(r.Expected)); err != nil {
		return err
	}
	for _, oc := range r.Outcomes {
		if _, err := fmt.Fprintf(w, "  %s %s: %d\n", oc.Op, oc.Outcome, oc.Count); err != nil {
			return err
		}
	}
	if r.Meta.Note != "" {
		_, err := fmt.Fprintf(w, "Note: %s\n", r.Meta.Note)
		return err
	}
	return nil
}

// money 以最短表示輸出金額（1000、1022.5），不補多餘的小數位。
func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
