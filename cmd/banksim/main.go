// cmd/banksim/main.go

// 本程式示範多個 goroutine 同時存取銀行帳戶時的互斥與死鎖。
// 此檔案負責解析旗標與設定檔、初始化日誌，執行選定的示範階段，
// 並在所有 worker 結束後輸出最終餘額報表。
//
// 注意：-phase deadlock 且 -timeout 0（預設）時，命中競爭窗口後程式會永久卡住，
// 這是該階段要展示的結果，只能由外部中止（Ctrl-C）。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"banksim/internal/config"
	"banksim/internal/report"
	"banksim/internal/sim"
)

func main() {
	phaseName := flag.String("phase", "", "Demonstration phase: basic | contended | deadlock | safe | stress")
	configPath := flag.String("config", "", "Path to banksim.yaml (optional)")
	timeout := flag.Duration("timeout", 0, "Abort the phase after this long and report blocked workers (0 = wait forever)")
	reportPath := flag.String("report", "", "Also write the final report as JSON to this path (optional)")
	logLevel := flag.String("log-level", "", "Override log level: debug | info | warn | error")
	flag.Parse()

	phase, err := sim.ParsePhase(*phaseName)
	if err != nil {
		flag.Usage()
		log.Fatalf("banksim: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("banksim: %v", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("banksim: invalid log level %q: %v", cfg.LogLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// 收到 SIGINT/SIGTERM 時取消 ctx：等鎖中的 worker 會釋放已持有的鎖並結束
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	rep, runErr := sim.NewRunner(cfg, logger).Run(ctx, phase)
	if runErr != nil && !errors.Is(runErr, sim.ErrIncomplete) {
		log.Fatalf("banksim: %v", runErr)
	}

	if err := report.WriteText(os.Stdout, rep); err != nil {
		log.Fatalf("banksim: write report: %v", err)
	}
	if *reportPath != "" {
		if err := report.Save(*reportPath, rep); err != nil {
			log.Fatalf("banksim: save report: %v", err)
		}
	}

	if errors.Is(runErr, sim.ErrIncomplete) {
		fmt.Fprintf(os.Stderr, "banksim: %v (after %s)\n", runErr, rep.Elapsed.Round(time.Millisecond))
		stop()
		os.Exit(2)
	}
}
