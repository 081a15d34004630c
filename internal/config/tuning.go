package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// PricingTuning holds the pricing knobs that can change without a restart.
type PricingTuning struct {
	ReserveMaxAttempts int           `mapstructure:"reserveMaxAttempts"`
	EvaluateTimeout    time.Duration `mapstructure:"evaluateTimeout"`
}

type PricingTuningHolder struct {
	current atomic.Value // holds PricingTuning
}

// NewPricingTuningHolder reads pricing.yml (or PRICING_TUNING_FILE) on top of
// the environment defaults and reloads it whenever the file changes.
func NewPricingTuningHolder(cfg Config, log *zap.Logger) (*PricingTuningHolder, error) {
	defaults := PricingTuning{
		ReserveMaxAttempts: cfg.Pricing.ReserveMaxAttempts,
		EvaluateTimeout:    cfg.Pricing.EvaluateTimeout,
	}

	v := viper.New()
	if cfg.Pricing.TuningFile != "" {
		v.SetConfigFile(cfg.Pricing.TuningFile)
	} else {
		v.SetConfigName("pricing")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/discount-engine")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("PRICING_TUNING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("pricing.reserveMaxAttempts", defaults.ReserveMaxAttempts)
	v.SetDefault("pricing.evaluateTimeout", defaults.EvaluateTimeout)

	holder := &PricingTuningHolder{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		if err := validatePricingTuning(defaults); err != nil {
			return nil, err
		}
		holder.current.Store(defaults)
		return holder, nil
	}

	var tuning PricingTuning
	if err := v.UnmarshalKey("pricing", &tuning); err != nil {
		return nil, err
	}
	if err := validatePricingTuning(tuning); err != nil {
		return nil, err
	}
	holder.current.Store(tuning)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingTuning
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Warn("pricing tuning reload failed", zap.Error(err))
			return
		}
		if err := validatePricingTuning(updated); err != nil {
			log.Warn("invalid pricing tuning ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("pricing tuning reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticPricingTuning returns a holder that never reloads.
func NewStaticPricingTuning(tuning PricingTuning) *PricingTuningHolder {
	holder := &PricingTuningHolder{}
	holder.current.Store(tuning)
	return holder
}

func (h *PricingTuningHolder) Get() PricingTuning {
	return h.current.Load().(PricingTuning)
}

func validatePricingTuning(t PricingTuning) error {
	if t.ReserveMaxAttempts < 1 {
		return errors.New("pricing.reserveMaxAttempts must be at least 1")
	}
	if t.EvaluateTimeout < 0 {
		return errors.New("pricing.evaluateTimeout cannot be negative")
	}
	return nil
}
