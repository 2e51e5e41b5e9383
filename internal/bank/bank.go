// internal/bank/bank.go

// Package bank 定義核心商業邏輯：單帳戶存提款、naive 轉帳與依序上鎖的安全轉帳。
// 與單一全域鎖不同，本模組採「每個帳戶一把鎖」，因此跨帳戶操作需要同時持有兩把鎖，
// 上鎖順序決定是否可能死鎖：
//   - Transfer：依呼叫端給定的 from → to 順序上鎖，A→B 與 B→A 並行時可能循環等待。
//   - SafeTransfer：一律依帳戶 ID 由小到大上鎖，全域順序一致，不可能循環等待。
//
// 模擬延遲（OpDelay / TransferDelay）在持鎖期間執行且不釋放鎖，這是重現死鎖所必需的。
package bank

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"
)

// 操作名稱，用於日誌與 metrics 標籤。
const (
	OpDeposit      = "deposit"
	OpWithdraw     = "withdraw"
	OpTransfer     = "transfer"
	OpSafeTransfer = "safe_transfer"
)

// Recorder 接收每次操作的結果與等鎖時間；由 metrics 套件實作。
type Recorder interface {
	ObserveOperation(op, outcome string)
	ObserveLockWait(op string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string)       {}
func (nopRecorder) ObserveLockWait(string, time.Duration) {}

// Options 為 Bank 的可選依賴；零值可用（無延遲、不輸出日誌、不記錄 metrics）。
type Options struct {
	// OpDelay 為存提款臨界區內的模擬處理時間。
	OpDelay time.Duration
	// TransferDelay 為取得第一把鎖後、取得第二把鎖前的模擬延遲。
	TransferDelay time.Duration
	Logger        *slog.Logger
	Recorder      Recorder
}

// Bank 在一個 Registry 上執行四種存取協定。
// Bank 本身沒有可變狀態；所有共享狀態都在帳戶內，由各帳戶的鎖保護。
type Bank struct {
	reg           *Registry
	opDelay       time.Duration
	transferDelay time.Duration
	log           *slog.Logger
	rec           Recorder
}

// NewBank 以指定註冊表與選項建立 Bank。
func NewBank(reg *Registry, opts Options) *Bank {
	b := &Bank{
		reg:           reg,
		opDelay:       opts.OpDelay,
		transferDelay: opts.TransferDelay,
		log:           opts.Logger,
		rec:           opts.Recorder,
	}
	if b.log == nil {
		b.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if b.rec == nil {
		b.rec = nopRecorder{}
	}
	return b
}

// Registry 回傳 Bank 操作的註冊表。
func (b *Bank) Registry() *Registry { return b.reg }

// Deposit 存款：於帳戶鎖內（含模擬處理時間）無條件增加餘額。
func (b *Bank) Deposit(ctx context.Context, id int, amt float64) (bal Balance, err error) {
	defer b.observe(OpDeposit, &err)
	log := b.logger(ctx)
	if !validAmount(amt) {
		return Balance{}, ErrBadAmount
	}
	a, ok := b.reg.Find(id)
	if !ok {
		log.Warn("invalid account", "op", OpDeposit, "account", id)
		return Balance{}, ErrNotFound
	}

	if err := b.lock(ctx, OpDeposit, a); err != nil {
		return Balance{}, err
	}
	defer a.release()
	log.Info("depositing", "amount", amt, "account", id)

	if err := pause(ctx, b.opDelay); err != nil {
		return Balance{}, err
	}
	a.balance += amt
	log.Info("new balance", "account", id, "balance", a.balance)
	return Balance{ID: id, Balance: a.balance}, nil
}

// Withdraw 提款：餘額 >= 金額才扣款，否則回傳 ErrInsufficient 且餘額不變。
// 餘額檢查與扣款在同一個臨界區，因此餘額永遠不會變成負數。
func (b *Bank) Withdraw(ctx context.Context, id int, amt float64) (bal Balance, err error) {
	defer b.observe(OpWithdraw, &err)
	log := b.logger(ctx)
	if !validAmount(amt) {
		return Balance{}, ErrBadAmount
	}
	a, ok := b.reg.Find(id)
	if !ok {
		log.Warn("invalid account", "op", OpWithdraw, "account", id)
		return Balance{}, ErrNotFound
	}

	if err := b.lock(ctx, OpWithdraw, a); err != nil {
		return Balance{}, err
	}
	defer a.release()
	log.Info("withdrawing", "amount", amt, "account", id)

	if err := pause(ctx, b.opDelay); err != nil {
		return Balance{}, err
	}
	if a.balance < amt {
		log.Info("insufficient funds", "account", id, "balance", a.balance)
		return Balance{ID: id, Balance: a.balance}, ErrInsufficient
	}
	a.balance -= amt
	log.Info("new balance", "account", id, "balance", a.balance)
	return Balance{ID: id, Balance: a.balance}, nil
}

// Transfer 為 naive 轉帳：先鎖 from，延遲後再鎖 to，順序完全依呼叫端。
// 兩個方向相反的 Transfer 並行時，各自持有自己的 from 並等待對方的鎖，形成循環等待。
// 此協定刻意不修正該問題；ctx 為 context.Background() 時會永久阻塞。
func (b *Bank) Transfer(ctx context.Context, fromID, toID int, amt float64) (err error) {
	defer b.observe(OpTransfer, &err)
	from, to, err := b.pair(ctx, OpTransfer, fromID, toID, amt)
	if err != nil {
		return err
	}
	b.logger(ctx).Info("transferring", "amount", amt, "from", fromID, "to", toID)
	return b.move(ctx, OpTransfer, from, to, from, to, amt)
}

// SafeTransfer 依帳戶 ID 由小到大上鎖，再依呼叫端給定的 from/to 角色搬移資金。
// 上鎖順序只取決於 ID，與轉帳方向無關，因此任意並行呼叫都不會循環等待。
func (b *Bank) SafeTransfer(ctx context.Context, fromID, toID int, amt float64) (err error) {
	defer b.observe(OpSafeTransfer, &err)
	from, to, err := b.pair(ctx, OpSafeTransfer, fromID, toID, amt)
	if err != nil {
		return err
	}
	first, second := from, to
	if to.id < from.id {
		first, second = to, from
	}
	b.logger(ctx).Info("safely transferring", "amount", amt, "from", fromID, "to", toID)
	return b.move(ctx, OpSafeTransfer, first, second, from, to, amt)
}

// pair 檢核金額與帳戶，查出 from/to；任何失敗都不會產生副作用。
func (b *Bank) pair(ctx context.Context, op string, fromID, toID int, amt float64) (*Account, *Account, error) {
	if !validAmount(amt) {
		return nil, nil, ErrBadAmount
	}
	if fromID == toID {
		return nil, nil, ErrSameAccount
	}
	from, ok1 := b.reg.Find(fromID)
	to, ok2 := b.reg.Find(toID)
	if !ok1 || !ok2 {
		b.logger(ctx).Warn("invalid account IDs", "op", op, "from", fromID, "to", toID)
		return nil, nil, ErrNotFound
	}
	return from, to, nil
}

// move 依 first → second 的順序上鎖（中間插入模擬延遲，期間不釋放 first），
// 持有兩把鎖後才檢查餘額並搬移資金；解鎖順序與上鎖相反（defer LIFO）。
func (b *Bank) move(ctx context.Context, op string, first, second, from, to *Account, amt float64) error {
	log := b.logger(ctx)

	if err := b.lock(ctx, op, first); err != nil {
		return err
	}
	defer first.release()
	log.Info("locked account", "op", op, "account", first.id)

	if err := pause(ctx, b.transferDelay); err != nil {
		return err
	}

	if err := b.lock(ctx, op, second); err != nil {
		return err
	}
	defer second.release()
	log.Info("locked account", "op", op, "account", second.id)

	if from.balance < amt {
		log.Info("insufficient funds for transfer", "op", op, "from", from.id, "balance", from.balance)
		return ErrInsufficient
	}
	from.balance -= amt
	to.balance += amt
	log.Info("transfer successful", "op", op, "from", from.id, "to", to.id, "amount", amt)
	return nil
}

// lock 取得帳戶鎖並記錄等待時間；ctx 取消時回傳包裝後的 ctx.Err()。
func (b *Bank) lock(ctx context.Context, op string, a *Account) error {
	start := time.Now()
	err := a.acquire(ctx)
	b.rec.ObserveLockWait(op, time.Since(start))
	if err != nil {
		return fmt.Errorf("lock account %d: %w", a.id, err)
	}
	return nil
}

func (b *Bank) observe(op string, err *error) {
	b.rec.ObserveOperation(op, Outcome(*err))
}

// pause 在持鎖狀態下等待 d；不釋放任何已持有的鎖。
// ctx 為 context.Background() 時 Done() 為 nil，只會等計時器。
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func validAmount(amt float64) bool {
	return amt > 0 && !math.IsInf(amt, 0)
}
