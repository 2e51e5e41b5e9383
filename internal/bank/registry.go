// internal/bank/registry.go

package bank

import "math"

// Registry 擁有一次模擬所需的全部帳戶。
// - accts：依建立順序排列的帳戶清單（報表輸出順序）。
// - index：ID → *Account 索引表。
//
// 成員只在 Create 時變動；Create 必須在任何 worker 啟動前完成，
// 之後 Find 為純讀取，可由多個 goroutine 同時呼叫而無須額外同步。
type Registry struct {
	accts []*Account
	index map[int]*Account
}

// NewRegistry 建立空白註冊表。
func NewRegistry() *Registry {
	return &Registry{index: make(map[int]*Account)}
}

// Create 清空既有帳戶，並建立 count 個編號 1..count、餘額皆為 startingBalance 的新帳戶。
// 不可與任何進行中的操作並行呼叫。
func (r *Registry) Create(count int, startingBalance float64) error {
	if count < 0 || startingBalance < 0 || math.IsNaN(startingBalance) || math.IsInf(startingBalance, 0) {
		return ErrBadAmount
	}
	r.accts = make([]*Account, 0, count)
	r.index = make(map[int]*Account, count)
	for id := 1; id <= count; id++ {
		a := newAccount(id, startingBalance)
		r.accts = append(r.accts, a)
		r.index[id] = a
	}
	return nil
}

// Find 依 ID 查詢帳戶；不存在時 ok 為 false。
func (r *Registry) Find(id int) (*Account, bool) {
	a, ok := r.index[id]
	return a, ok
}

// Len 回傳帳戶數量。
func (r *Registry) Len() int { return len(r.accts) }

// Accounts 回傳帳戶清單的淺拷貝（依建立順序），避免呼叫端改動內部切片。
func (r *Registry) Accounts() []*Account {
	out := make([]*Account, len(r.accts))
	copy(out, r.accts)
	return out
}

// Balances 逐一在各帳戶鎖內讀取餘額，回傳快照。
func (r *Registry) Balances() []Balance {
	accts := r.Accounts()
	out := make([]Balance, 0, len(accts))
	for _, a := range accts {
		out = append(out, Balance{ID: a.id, Balance: a.Balance()})
	}
	return out
}

// Total 回傳所有帳戶餘額總和（守恆檢查用）。
func (r *Registry) Total() float64 {
	var sum float64
	for _, b := range r.Balances() {
		sum += b.Balance
	}
	return sum
}
