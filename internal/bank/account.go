// internal/bank/account.go
//
// Package bank 定義核心領域模型：帳戶、帳戶註冊表與四種存取協定。
// 本檔定義 Account 結構與其專屬的互斥鎖，不含任何輸出或設定細節。

package bank

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Account represents a bank account.
// 每個帳戶擁有一把獨立的排他鎖（容量 1 的 semaphore），從不與其他帳戶共用。
// balance 只能在持有 lock 時讀寫；帳戶一律以 *Account 傳遞，鎖不可被複製。
type Account struct {
	id      int
	lock    *semaphore.Weighted
	balance float64
}

// newAccount 建立一個已初始化、尚未上鎖的帳戶。
func newAccount(id int, balance float64) *Account {
	return &Account{id: id, lock: semaphore.NewWeighted(1), balance: balance}
}

// ID 回傳帳戶識別碼（建立後不可變，無須持鎖）。
func (a *Account) ID() int { return a.id }

// Balance 於臨界區內讀取目前餘額。
// 僅供 worker 全部結束後的報表或測試使用；若帳戶被永久鎖住（死鎖），此呼叫亦會阻塞。
func (a *Account) Balance() float64 {
	// Background 永不取消，acquire 只會在取得鎖後回傳，結果 nil 可忽略
	a.acquire(context.Background())
	defer a.release()
	return a.balance
}

// acquire 取得帳戶排他鎖。
// ctx 為 context.Background() 時為無限期等待；ctx 取消時回傳 ctx.Err() 且不持有鎖。
func (a *Account) acquire(ctx context.Context) error {
	return a.lock.Acquire(ctx, 1)
}

func (a *Account) release() {
	a.lock.Release(1)
}

// Balance 為單一帳戶餘額的唯讀快照。
type Balance struct {
	ID      int     `json:"id"`
	Balance float64 `json:"balance"`
}
