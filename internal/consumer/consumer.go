// internal/consumer/consumer.go

// Package consumer 讀入整段文字串流並列出收到的每一行。
// 與 bank 模組無任何共用邏輯，只是一個獨立的小工具。
package consumer

import (
	"bufio"
	"fmt"
	"io"
)

// maxLine 為單行最大長度；超過時 Run 回傳 bufio.ErrTooLong。
const maxLine = 1 << 20

// Run 讀取 r 直到 EOF，先輸出行數，再以 1 起算的序號逐行輸出。
//
//	Consumer received 3 lines:
//	1: a
//	2: bb
//	3:
func Run(r io.Reader, w io.Writer) error {
	lines, err := ReadLines(r)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Consumer received %d lines:\n", len(lines))
	for i, line := range lines {
		fmt.Fprintf(bw, "%d: %s\n", i+1, line)
	}
	return bw.Flush()
}

// ReadLines 回傳 r 中的所有行（不含換行符號；結尾的 \r 一併去除）。
// 最後一行即使沒有換行符號也會被計入。
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return lines, nil
}
