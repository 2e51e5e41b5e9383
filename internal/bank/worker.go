// internal/bank/worker.go

package bank

import (
	"context"
	"errors"
	"log/slog"
)

// 操作結果標籤。
const (
	OutcomeOK           = "ok"
	OutcomeInsufficient = "insufficient_funds"
	OutcomeNotFound     = "invalid_account"
	OutcomeBadAmount    = "bad_amount"
	OutcomeSameAccount  = "same_account"
	OutcomeCanceled     = "canceled"
	OutcomeError        = "error"
)

type workerKey struct{}

// WithWorker 將 worker 編號綁到 ctx，Bank 的每一行進度日誌都會帶上它。
func WithWorker(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, workerKey{}, id)
}

// WorkerFrom 取出 ctx 上的 worker 編號。
func WorkerFrom(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(workerKey{}).(int)
	return id, ok
}

func (b *Bank) logger(ctx context.Context) *slog.Logger {
	if id, ok := WorkerFrom(ctx); ok {
		return b.log.With("worker", id)
	}
	return b.log
}

// Outcome 將操作回傳的錯誤對應成結果標籤。
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrInsufficient):
		return OutcomeInsufficient
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrBadAmount):
		return OutcomeBadAmount
	case errors.Is(err, ErrSameAccount):
		return OutcomeSameAccount
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
