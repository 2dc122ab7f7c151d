package types

import (
	"errors"
	"fmt"
	"maps"
)

// Config holds storage backend selection and parameters for Backend.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Supported storage backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrInvalidConfig  = errors.New("invalid simulation config")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
	BackendFile:   true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// SimulationConfig controls latency, fault injection and persistence of the
// mock stores. Delays are in milliseconds.
type SimulationConfig struct {
	DelayMin              int             `json:"delayMin"`
	DelayMax              int             `json:"delayMax"`
	ErrorRate             float64         `json:"errorRate"`
	AutoGenerateActivity  bool            `json:"autoGenerateActivity"`
	PersistToLocalStorage bool            `json:"persistToLocalStorage"`
	EnableLogging         bool            `json:"enableLogging"`
	EnabledServices       map[string]bool `json:"enabledServices"`
}

// DefaultSimulationConfig returns the configuration used when nothing is stored.
func DefaultSimulationConfig() SimulationConfig {
	services := make(map[string]bool, len(StandardServiceNames))
	for _, name := range StandardServiceNames {
		services[name] = true
	}
	return SimulationConfig{
		DelayMin:              200,
		DelayMax:              800,
		ErrorRate:             0.05,
		AutoGenerateActivity:  true,
		PersistToLocalStorage: true,
		EnableLogging:         true,
		EnabledServices:       services,
	}
}

// Clone returns a deep copy.
func (c SimulationConfig) Clone() SimulationConfig {
	c.EnabledServices = maps.Clone(c.EnabledServices)
	if c.EnabledServices == nil {
		c.EnabledServices = map[string]bool{}
	}
	return c
}

// Validate checks numeric bounds. Errors wrap ErrInvalidConfig.
func (c SimulationConfig) Validate() error {
	if c.DelayMin < 0 || c.DelayMax < 0 {
		return fmt.Errorf("%w: delays must be non-negative", ErrInvalidConfig)
	}
	if c.DelayMin > c.DelayMax {
		return fmt.Errorf("%w: delayMin %d exceeds delayMax %d", ErrInvalidConfig, c.DelayMin, c.DelayMax)
	}
	if c.ErrorRate < 0 || c.ErrorRate > 1 {
		return fmt.Errorf("%w: errorRate %v outside [0,1]", ErrInvalidConfig, c.ErrorRate)
	}
	return nil
}

// ConfigPatch is a partial SimulationConfig. Nil fields are left unchanged;
// EnabledServices entries are merged key by key.
type ConfigPatch struct {
	DelayMin              *int            `json:"delayMin,omitempty"`
	DelayMax              *int            `json:"delayMax,omitempty"`
	ErrorRate             *float64        `json:"errorRate,omitempty"`
	AutoGenerateActivity  *bool           `json:"autoGenerateActivity,omitempty"`
	PersistToLocalStorage *bool           `json:"persistToLocalStorage,omitempty"`
	EnableLogging         *bool           `json:"enableLogging,omitempty"`
	EnabledServices       map[string]bool `json:"enabledServices,omitempty"`
}

// Apply returns c with the patch merged in. c is not modified.
func (p ConfigPatch) Apply(c SimulationConfig) SimulationConfig {
	out := c.Clone()
	if p.DelayMin != nil {
		out.DelayMin = *p.DelayMin
	}
	if p.DelayMax != nil {
		out.DelayMax = *p.DelayMax
	}
	if p.ErrorRate != nil {
		out.ErrorRate = *p.ErrorRate
	}
	if p.AutoGenerateActivity != nil {
		out.AutoGenerateActivity = *p.AutoGenerateActivity
	}
	if p.PersistToLocalStorage != nil {
		out.PersistToLocalStorage = *p.PersistToLocalStorage
	}
	if p.EnableLogging != nil {
		out.EnableLogging = *p.EnableLogging
	}
	for k, v := range p.EnabledServices {
		out.EnabledServices[k] = v
	}
	return out
}

// PatchFrom builds a patch that sets every field of c.
func PatchFrom(c SimulationConfig) ConfigPatch {
	return ConfigPatch{
		DelayMin:              &c.DelayMin,
		DelayMax:              &c.DelayMax,
		ErrorRate:             &c.ErrorRate,
		AutoGenerateActivity:  &c.AutoGenerateActivity,
		PersistToLocalStorage: &c.PersistToLocalStorage,
		EnableLogging:         &c.EnableLogging,
		EnabledServices:       maps.Clone(c.EnabledServices),
	}
}
