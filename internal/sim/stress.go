// internal/sim/stress.go

package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"banksim/internal/bank"
	"banksim/internal/config"
)

// runStress 以隨機帳戶對執行 Stress.Workers 次安全轉帳。
// 同時執行的 worker 數由 errgroup.SetLimit 限制，啟動速率由 token bucket 控制。
// 金額一律為整數，float64 加減在 2^53 以內完全精確，總額可直接比較是否守恆。
func (r *Runner) runStress(ctx context.Context, b *bank.Bank) ([]result, error) {
	sc := r.cfg.Stress
	n := b.Registry().Len()
	if n < 2 {
		return nil, fmt.Errorf("stress phase needs at least 2 accounts, got %d", n)
	}
	if sc.MaxAmount < 1 || sc.MaxAmount > config.MaxAmountLimit {
		return nil, fmt.Errorf("stress.maxAmount must be in [1, %d], got %d", config.MaxAmountLimit, sc.MaxAmount)
	}

	limit := rate.Inf
	if sc.Rate > 0 {
		limit = rate.Limit(sc.Rate)
	}
	limiter := rate.NewLimiter(limit, max(sc.Burst, 1))
	rng := rand.New(rand.NewPCG(sc.Seed, sc.Seed^0x9e3779b97f4a7c15))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(sc.Concurrency, 1))

	slots := make([]result, sc.Workers)
	launched := 0
	for i := 0; i < sc.Workers; i++ {
		if err := limiter.Wait(gctx); err != nil {
			break
		}
		from := rng.IntN(n) + 1
		to := rng.IntN(n-1) + 1
		if to >= from {
			to++
		}
		job := Job{
			Op:     bank.OpSafeTransfer,
			From:   from,
			To:     to,
			Amount: float64(rng.IntN(sc.MaxAmount) + 1),
		}
		launched++
		g.Go(func() error {
			err := job.Run(bank.WithWorker(gctx, i+1), b)
			slots[i] = result{job: job, err: err}
			// 只有 ctx 中止才視為失敗並取消其餘 worker；業務結果不算錯誤
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		})
	}
	// 已啟動 worker 的中止由 Run 依各自結果判定；這裡只回報尚未啟動的部分
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return slots[:launched], err
	}
	if launched < sc.Workers {
		return slots[:launched], fmt.Errorf("%w: launched %d of %d workers before the deadline", ErrIncomplete, launched, sc.Workers)
	}
	return slots[:launched], nil
}
