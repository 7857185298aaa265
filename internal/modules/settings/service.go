package settings

import (
	"fmt"
	"strconv"

	"github.com/aristath/riskalloc/internal/modules/slider"
	"github.com/rs/zerolog"
)

// Service exposes typed settings on top of the Repository.
type Service struct {
	repo *Repository
	rng  slider.Range
	log  zerolog.Logger
}

// NewService creates a settings service. rng bounds the stored risk aversion.
func NewService(repo *Repository, rng slider.Range, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		rng:  rng,
		log:  log.With().Str("service", "settings").Logger(),
	}
}

// Range returns the slider range the service enforces.
func (s *Service) Range() slider.Range {
	return s.rng
}

// GetRiskAversion returns the stored slider value, or the range default when
// none is stored. A stored value that no longer fits the range is snapped into it.
func (s *Service) GetRiskAversion() (float64, error) {
	value, err := s.repo.GetFloat(KeyRiskAversion, s.rng.Default)
	if err != nil {
		return s.rng.Default, fmt.Errorf("failed to read risk aversion: %w", err)
	}
	if err := s.rng.Check(value); err != nil {
		s.log.Warn().Float64("stored", value).Msg("Stored risk aversion outside slider range, snapping")
		return s.rng.Snap(value), nil
	}
	return value, nil
}

// GetRiskAversionState returns the current value with its range.
func (s *Service) GetRiskAversionState() (RiskAversionState, error) {
	value, err := s.GetRiskAversion()
	if err != nil {
		return RiskAversionState{}, err
	}
	return RiskAversionState{
		Value: value,
		Min:   s.rng.Min,
		Max:   s.rng.Max,
		Step:  s.rng.Step,
		Ticks: s.rng.Ticks(),
	}, nil
}

// SetRiskAversion checks v against the range, snaps it to the step grid and
// stores it. The stored value is returned.
func (s *Service) SetRiskAversion(v float64) (float64, error) {
	if err := s.rng.Check(v); err != nil {
		return 0, err
	}

	snapped := s.rng.Snap(v)
	description := SettingDescriptions[KeyRiskAversion]
	if err := s.repo.Set(KeyRiskAversion, strconv.FormatFloat(snapped, 'g', -1, 64), &description); err != nil {
		return 0, err
	}

	s.log.Info().Float64("requested", v).Float64("stored", snapped).Msg("Risk aversion updated")
	return snapped, nil
}

// MarketOverrides reads the market parameter keys that are set.
func (s *Service) MarketOverrides() (MarketOverrides, error) {
	var overrides MarketOverrides
	targets := []struct {
		key string
		dst **float64
	}{
		{KeyExpectedReturn, &overrides.ExpectedReturn},
		{KeyVolatility, &overrides.Volatility},
		{KeyRiskFreeRate, &overrides.RiskFreeRate},
	}

	for _, target := range targets {
		raw, err := s.repo.Get(target.key)
		if err != nil {
			return MarketOverrides{}, err
		}
		if raw == nil || *raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(*raw, 64)
		if err != nil {
			s.log.Warn().Err(err).Str("key", target.key).Str("value", *raw).Msg("Ignoring unparsable market override")
			continue
		}
		*target.dst = &value
	}
	return overrides, nil
}

// SetMarketOverride stores one market parameter override. key must be one of
// the market parameter keys.
func (s *Service) SetMarketOverride(key string, value float64) error {
	switch key {
	case KeyExpectedReturn, KeyVolatility, KeyRiskFreeRate:
	default:
		return fmt.Errorf("unknown market parameter %q", key)
	}
	description := SettingDescriptions[key]
	return s.repo.Set(key, strconv.FormatFloat(value, 'g', -1, 64), &description)
}

// GetAll returns every stored setting, with defaults filled in for known keys
// that are not stored.
func (s *Service) GetAll() (map[string]string, error) {
	stored, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	for key, def := range SettingDefaults {
		if _, ok := stored[key]; ok || def == nil {
			continue
		}
		if key == KeyRiskAversion {
			def = s.rng.Default
		}
		stored[key] = fmt.Sprint(def)
	}
	return stored, nil
}
