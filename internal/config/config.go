// internal/config/config.go
//
// Package config 定義模擬器的可調參數。
// 預設值為標準示範參數（5 戶、每戶 1000、存提款 50ms、轉帳 100ms）；
// 可選擇以 YAML 檔覆寫任一欄位，未出現的欄位保留預設值。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxAmountLimit 為 Stress.MaxAmount 的上限；2^53 以內的整數金額在 float64 加減中完全精確。
const MaxAmountLimit = 1 << 53

// Stress 為壓力階段（大量隨機安全轉帳）的參數。
type Stress struct {
	Workers     int     `yaml:"workers"`
	Concurrency int     `yaml:"concurrency"`
	Rate        float64 `yaml:"rate"` // 每秒啟動的 worker 數；<= 0 代表不限速
	Burst       int     `yaml:"burst"`
	MaxAmount   int     `yaml:"maxAmount"` // 單筆轉帳金額上限（整數），1..MaxAmountLimit
	Seed        uint64  `yaml:"seed"`
}

// UnmarshalYAML 解碼 stress 區段。
// yaml.v3 會把浮點數截斷後寫入 int 欄位，因此 maxAmount 寫成小數時直接拒絕。
func (s *Stress) UnmarshalYAML(n *yaml.Node) error {
	type plain Stress
	if err := n.Decode((*plain)(s)); err != nil {
		return err
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Value == "maxAmount" && val.ShortTag() == "!!float" {
			return fmt.Errorf("stress.maxAmount must be a whole number, got %s", val.Value)
		}
	}
	return nil
}

// Config 為整體設定。
type Config struct {
	Accounts        int           `yaml:"accounts"`
	StartingBalance float64       `yaml:"startingBalance"`
	OpDelay         time.Duration `yaml:"opDelay"`
	TransferDelay   time.Duration `yaml:"transferDelay"`
	LogLevel        string        `yaml:"logLevel"`
	Stress          Stress        `yaml:"stress"`
}

// Default 回傳四個示範階段共用的預設參數。
func Default() Config {
	return Config{
		Accounts:        5,
		StartingBalance: 1000,
		OpDelay:         50 * time.Millisecond,
		TransferDelay:   100 * time.Millisecond,
		LogLevel:        "info",
		Stress: Stress{
			Workers:     200,
			Concurrency: 16,
			Rate:        0,
			Burst:       1,
			MaxAmount:   250,
			Seed:        1,
		},
	}
}

// Load 讀取 YAML 檔並覆寫在預設值之上；path 為空字串時直接回傳預設值。
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate 檢查參數是否合理；每個示範階段至少需要 2 個帳戶。
func (c Config) Validate() error {
	var errs []error
	if c.Accounts < 2 {
		errs = append(errs, fmt.Errorf("accounts must be >= 2, got %d", c.Accounts))
	}
	if c.StartingBalance < 0 {
		errs = append(errs, fmt.Errorf("startingBalance must be >= 0, got %v", c.StartingBalance))
	}
	if c.OpDelay < 0 || c.TransferDelay < 0 {
		errs = append(errs, errors.New("delays must be >= 0"))
	}
	if c.Stress.Workers < 0 {
		errs = append(errs, fmt.Errorf("stress.workers must be >= 0, got %d", c.Stress.Workers))
	}
	if c.Stress.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("stress.concurrency must be >= 1, got %d", c.Stress.Concurrency))
	}
	if c.Stress.Rate > 0 && c.Stress.Burst < 1 {
		errs = append(errs, fmt.Errorf("stress.burst must be >= 1 when rate is set, got %d", c.Stress.Burst))
	}
	if c.Stress.MaxAmount < 1 || c.Stress.MaxAmount > MaxAmountLimit {
		errs = append(errs, fmt.Errorf("stress.maxAmount must be in [1, %d], got %d", MaxAmountLimit, c.Stress.MaxAmount))
	}
	return errors.Join(errs...)
}
