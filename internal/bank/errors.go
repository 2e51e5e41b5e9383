// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 這些錯誤屬於正常的商業結果（非系統錯誤），由 sim 層記錄後繼續執行，從不使程式中止。
// 呼叫端一律以 errors.Is 比對。

package bank

import "errors"

var (
	// ErrNotFound 代表帳戶 ID 不存在於註冊表（invalid-account）。
	ErrNotFound = errors.New("account not found")

	// ErrBadAmount 代表金額非法（<=0、NaN、Inf，或初始餘額為負）。
	ErrBadAmount = errors.New("amount must be > 0")

	// ErrInsufficient 代表餘額不足，提款或轉帳未執行。
	ErrInsufficient = errors.New("insufficient balance")

	// ErrSameAccount 代表轉帳來源與目標帳戶相同。
	// 鎖不可重入，同帳戶轉帳會鎖住自己，因此直接拒絕。
	ErrSameAccount = errors.New("from and to are same")
)
