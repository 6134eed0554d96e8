package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig carries the operational invoicing policy loaded from
// billing.yml. The invoice_settings row in the database remains the source of
// truth for sequence counters; this file configures the calculation policy.
type BillingConfig struct {
	BillingFrequency       string  `mapstructure:"billingFrequency"` // weekly, fortnightly, monthly
	OvertimeThresholdHours float64 `mapstructure:"overtimeThresholdHours"`
	RoundToQuarterHour     bool    `mapstructure:"roundToQuarterHour"`
	DefaultRegion          string  `mapstructure:"defaultRegion"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		BillingFrequency:       "weekly",
		OvertimeThresholdHours: 10,
		RoundToQuarterHour:     true,
		DefaultRegion:          "england-and-wales",
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/locums/config")
	v.AddConfigPath("/etc/locums")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LOCUMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.billingFrequency", defaults.BillingFrequency)
	v.SetDefault("billing.overtimeThresholdHours", defaults.OvertimeThresholdHours)
	v.SetDefault("billing.roundToQuarterHour", defaults.RoundToQuarterHour)
	v.SetDefault("billing.defaultRegion", defaults.DefaultRegion)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfigHolder wraps a fixed config without file watching.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func validateBillingConfig(cfg BillingConfig) error {
	switch strings.ToLower(strings.TrimSpace(cfg.BillingFrequency)) {
	case "weekly", "fortnightly", "monthly":
	default:
		return errors.New("billing.billingFrequency must be weekly, fortnightly or monthly")
	}
	if cfg.OvertimeThresholdHours <= 0 {
		return errors.New("billing.overtimeThresholdHours must be positive")
	}
	return nil
}
