// internal/sim/runner.go

package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"banksim/internal/bank"
	"banksim/internal/config"
	"banksim/internal/metrics"
	"banksim/internal/report"
)

// ErrIncomplete 代表有 worker 在 ctx 期限前仍卡在等鎖（死鎖的可觀察結果）。
var ErrIncomplete = errors.New("phase did not complete: workers still blocked at deadline")

// Runner 依設定執行示範階段。每次 Run 都使用全新的 Registry，階段之間不共享狀態。
type Runner struct {
	cfg config.Config
	log *slog.Logger
}

// NewRunner 建立 Runner；log 為 nil 時不輸出進度。
func NewRunner(cfg config.Config, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{cfg: cfg, log: log}
}

// result 為單一 worker 的執行結果，每個 worker 只寫自己的那一格。
type result struct {
	job Job
	err error
}

// Run 執行指定階段並回傳報表。
//   - ctx 無期限時，deadlock 階段若命中競爭窗口會永久阻塞（預期行為）。
//   - ctx 有期限且 worker 因此中止時，回傳的報表 Completed=false，錯誤為 ErrIncomplete。
func (r *Runner) Run(ctx context.Context, phase Phase) (report.Report, error) {
	reg := bank.NewRegistry()
	if err := reg.Create(r.cfg.Accounts, r.cfg.StartingBalance); err != nil {
		return report.Report{}, fmt.Errorf("create accounts: %w", err)
	}
	initial := reg.Total()
	m := metrics.New()
	b := bank.NewBank(reg, bank.Options{
		OpDelay:       r.cfg.OpDelay,
		TransferDelay: r.cfg.TransferDelay,
		Logger:        r.log,
		Recorder:      m,
	})

	log := r.log.With("phase", string(phase))
	log.Info("phase starting", "accounts", reg.Len(), "starting_balance", r.cfg.StartingBalance)
	start := time.Now()

	var (
		results []result
		err     error
	)
	if phase == PhaseStress {
		results, err = r.runStress(ctx, b)
	} else {
		jobs := plan(phase)
		if jobs == nil {
			return report.Report{}, fmt.Errorf("phase %q has no plan", phase)
		}
		results = runJobs(ctx, b, jobs)
	}

	rep := report.Report{
		Phase:     string(phase),
		Completed: true,
		Elapsed:   time.Since(start),
		Accounts:  reg.Balances(),
		Total:     reg.Total(),
		Expected:  initial,
	}
	blocked := 0
	for _, res := range results {
		if res.err == nil {
			rep.Expected += res.job.delta()
		}
		if bank.Outcome(res.err) == bank.OutcomeCanceled {
			blocked++
		}
	}
	if outcomes, serr := m.Summary(); serr == nil {
		rep.Outcomes = outcomes
	} else {
		log.Warn("metrics summary failed", "err", serr)
	}

	if blocked > 0 {
		rep.Completed = false
		rep.Meta.Note = fmt.Sprintf("%d operation(s) still waiting for a lock at the deadline; circular wait suspected", blocked)
		log.Error("phase incomplete", "blocked", blocked, "elapsed", rep.Elapsed)
		return rep, ErrIncomplete
	}
	if errors.Is(err, ErrIncomplete) {
		rep.Completed = false
		rep.Meta.Note = err.Error()
		log.Error("phase incomplete", "err", err, "elapsed", rep.Elapsed)
		return rep, err
	}
	if err != nil {
		return rep, err
	}
	if !rep.Conserved() {
		log.Error("balance mismatch", "total", rep.Total, "expected", rep.Expected)
	}
	log.Info("phase complete", "elapsed", rep.Elapsed, "total", rep.Total)
	return rep, nil
}

// runJobs 為每個 Job 啟動一個 goroutine，並等待全部結束。
// 業務結果（餘額不足、帳戶不存在）只記錄，不影響其他 worker。
func runJobs(ctx context.Context, b *bank.Bank, jobs []Job) []result {
	results := make([]result, len(jobs))
	var wg sync.WaitGroup
	wg.Add(len(jobs))
	for i, job := range jobs {
		go func() {
			defer wg.Done()
			err := job.Run(bank.WithWorker(ctx, i+1), b)
			results[i] = result{job: job, err: err}
		}()
	}
	wg.Wait()
	return results
}
