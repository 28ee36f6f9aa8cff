// Package config defines the tunable business thresholds for order
// processing and loads them from a YAML configuration file.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Optimization priority modes.
const (
	PrioritySuppliersCount = "suppliers_count"
	PriorityContainerMatch = "container_match"
)

// PolicyConfig is the immutable set of tunable thresholds consumed by every
// pipeline stage. It is shared read-only across runs.
type PolicyConfig struct {
	// Similarity thresholds for match-status classification.
	SimThresholdOK  float64
	SimThresholdLow float64

	// Availability rules. A candidate short by at most
	// InsufficientThreshold (fraction of requested qty) stays available
	// when AllowInsufficient is set.
	AllowInsufficient     bool
	InsufficientThreshold float64

	// PriceMargin caps candidate prices at min price * (1 + margin).
	// Nil disables price filtering.
	PriceMargin *float64

	// Container matching settings.
	AllowAlikeContainers bool
	AlikeTolerance       int

	// Solver settings.
	SolverTimeoutSeconds int
	OptimizationPriority string
}

// LoggingConfig holds logging options.
type LoggingConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputFile string // optional file output
}

// StorageConfig holds run-persistence options.
type StorageConfig struct {
	DatabasePath string // empty = in-memory run store
}

// Configuration is the full application configuration.
type Configuration struct {
	Policy  PolicyConfig
	Logging LoggingConfig
	Storage StorageConfig
}

// DefaultPolicy returns the production default thresholds.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		SimThresholdOK:        0.42,
		SimThresholdLow:       0.30,
		AllowInsufficient:     true,
		InsufficientThreshold: 0.20,
		PriceMargin:           nil,
		AllowAlikeContainers:  false,
		AlikeTolerance:        1,
		SolverTimeoutSeconds:  60,
		OptimizationPriority:  PrioritySuppliersCount,
	}
}

// LoadConfiguration loads the YAML-formatted configuration at configPath.
// An empty path yields the defaults.
func LoadConfiguration(configPath string) (*Configuration, error) {
	configuration := Configuration{Policy: DefaultPolicy()}
	if configPath == "" {
		return &configuration, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// Validate checks the configuration for inconsistencies and returns
// human-readable warnings. Fatal misconfiguration returns an error instead.
func (c *Configuration) Validate() ([]string, error) {
	var warnings []string

	p := c.Policy
	if p.SimThresholdLow > p.SimThresholdOK {
		return nil, fmt.Errorf(
			"low similarity threshold %.2f exceeds ok threshold %.2f",
			p.SimThresholdLow, p.SimThresholdOK,
		)
	}
	if p.OptimizationPriority != PrioritySuppliersCount &&
		p.OptimizationPriority != PriorityContainerMatch {
		return nil, fmt.Errorf("invalid optimization priority: %s", p.OptimizationPriority)
	}
	if p.InsufficientThreshold < 0 || p.InsufficientThreshold >= 1 {
		return nil, fmt.Errorf(
			"insufficient threshold must be in [0, 1), got %.2f",
			p.InsufficientThreshold,
		)
	}
	if p.PriceMargin != nil && *p.PriceMargin < 0 {
		return nil, fmt.Errorf("price margin cannot be negative, got %.2f", *p.PriceMargin)
	}
	if p.SolverTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("solver timeout must be positive, got %d", p.SolverTimeoutSeconds)
	}
	if !p.AllowInsufficient && p.InsufficientThreshold > 0 {
		warnings = append(warnings,
			"insufficientThreshold is set but allowInsufficient is false; shortages will be rejected")
	}
	if p.AlikeTolerance < 0 {
		warnings = append(warnings, "alikeTolerance is negative; treating container matching as exact-only")
	}

	return warnings, nil
}

// Map returns the policy as a serialisable map, echoed in run output so a
// report can always be traced back to the thresholds that produced it.
func (p PolicyConfig) Map() map[string]any {
	var margin any
	if p.PriceMargin != nil {
		margin = *p.PriceMargin
	}
	return map[string]any{
		"sim_threshold_ok":       p.SimThresholdOK,
		"sim_threshold_low":      p.SimThresholdLow,
		"allow_insufficient":     p.AllowInsufficient,
		"insufficient_threshold": p.InsufficientThreshold,
		"price_margin":           margin,
		"allow_alike_containers": p.AllowAlikeContainers,
		"alike_tolerance":        p.AlikeTolerance,
		"solver_timeout":         p.SolverTimeoutSeconds,
		"optimization_priority":  p.OptimizationPriority,
	}
}
