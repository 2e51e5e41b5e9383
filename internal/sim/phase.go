// internal/sim/phase.go

// Package sim 為示範驅動層：建立帳戶、依階段產生 worker、等待全部結束並產出報表。
// 每個 worker 只執行一個操作，參數（帳戶、金額）在啟動前就複製進 Job，
// worker 之間只透過 Registry 與帳戶鎖溝通。
package sim

import (
	"context"
	"fmt"
	"strings"

	"banksim/internal/bank"
)

// Phase 為可選的示範階段。
type Phase string

const (
	// PhaseBasic：基本並行存提款，每個帳戶一存一提。
	PhaseBasic Phase = "basic"
	// PhaseContended：10 個 worker 重疊存取帳戶 1..3。
	PhaseContended Phase = "contended"
	// PhaseDeadlock：naive transfer(1,2) 與 transfer(2,1) 並行，重現死鎖。
	PhaseDeadlock Phase = "deadlock"
	// PhaseSafe：依序上鎖的 safeTransfer(1,2) 與 safeTransfer(2,1) 並行。
	PhaseSafe Phase = "safe"
	// PhaseStress：大量隨機安全轉帳，驗證活性與資金守恆。
	PhaseStress Phase = "stress"
)

// Phases 回傳所有階段，依示範順序排列。
func Phases() []Phase {
	return []Phase{PhaseBasic, PhaseContended, PhaseDeadlock, PhaseSafe, PhaseStress}
}

// ParsePhase 解析階段名稱（不分大小寫）。
func ParsePhase(s string) (Phase, error) {
	p := Phase(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Phases() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown phase %q (want one of %s)", s, phaseList())
}

func phaseList() string {
	names := make([]string, 0, len(Phases()))
	for _, p := range Phases() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

// Job 是單一 worker 的不可變操作參數。
// Deposit / Withdraw 只使用 From。
type Job struct {
	Op     string
	From   int
	To     int
	Amount float64
}

// Run 在 b 上執行此 Job。
func (j Job) Run(ctx context.Context, b *bank.Bank) error {
	switch j.Op {
	case bank.OpDeposit:
		_, err := b.Deposit(ctx, j.From, j.Amount)
		return err
	case bank.OpWithdraw:
		_, err := b.Withdraw(ctx, j.From, j.Amount)
		return err
	case bank.OpTransfer:
		return b.Transfer(ctx, j.From, j.To, j.Amount)
	case bank.OpSafeTransfer:
		return b.SafeTransfer(ctx, j.From, j.To, j.Amount)
	default:
		return fmt.Errorf("unknown op %q", j.Op)
	}
}

// delta 回傳此 Job 成功後對全體總額的影響；轉帳不改變總額。
func (j Job) delta() float64 {
	switch j.Op {
	case bank.OpDeposit:
		return j.Amount
	case bank.OpWithdraw:
		return -j.Amount
	default:
		return 0
	}
}

// plan 回傳固定階段的 Job 清單；stress 階段由 runStress 動態產生。
func plan(p Phase) []Job {
	switch p {
	case PhaseBasic:
		jobs := make([]Job, 0, 10)
		for i := 0; i < 5; i++ {
			id := i%5 + 1
			amt := 100.0 + float64(i)*10
			jobs = append(jobs,
				Job{Op: bank.OpDeposit, From: id, Amount: amt},
				Job{Op: bank.OpWithdraw, From: id, Amount: amt / 2},
			)
		}
		return jobs
	case PhaseContended:
		jobs := make([]Job, 0, 10)
		for i := 0; i < 10; i++ {
			id := i%3 + 1 // 帳戶 1、2、3 重疊存取
			amt := 50.0 + float64(i)*5
			if i%2 == 0 {
				jobs = append(jobs, Job{Op: bank.OpDeposit, From: id, Amount: amt})
			} else {
				jobs = append(jobs, Job{Op: bank.OpWithdraw, From: id, Amount: amt / 2})
			}
		}
		return jobs
	case PhaseDeadlock:
		return []Job{
			{Op: bank.OpTransfer, From: 1, To: 2, Amount: 300},
			{Op: bank.OpTransfer, From: 2, To: 1, Amount: 200},
		}
	case PhaseSafe:
		return []Job{
			{Op: bank.OpSafeTransfer, From: 1, To: 2, Amount: 300},
			{Op: bank.OpSafeTransfer, From: 2, To: 1, Amount: 200},
		}
	default:
		return nil
	}
}
