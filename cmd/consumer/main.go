// cmd/consumer/main.go

// 從標準輸入讀取所有行，輸出行數與逐行編號內容。
// 例：printf 'a\nbb\n\n' | consumer
package main

import (
	"log"
	"os"

	"banksim/internal/consumer"
)

func main() {
	if err := consumer.Run(os.Stdin, os.Stdout); err != nil {
		log.Fatalf("consumer: %v", err)
	}
}
