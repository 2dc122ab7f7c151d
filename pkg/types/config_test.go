package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "memory backend needs no DataDir",
			config:  Config{Backend: "memory"},
			wantErr: nil,
		},
		{
			name:    "file backend is accepted",
			config:  Config{Backend: "file", DataDir: "/tmp/data"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSimulationConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *SimulationConfig)
		valid  bool
	}{
		{"defaults are valid", func(c *SimulationConfig) {}, true},
		{"zero delays are valid", func(c *SimulationConfig) { c.DelayMin, c.DelayMax = 0, 0 }, true},
		{"error rate of one is valid", func(c *SimulationConfig) { c.ErrorRate = 1 }, true},
		{"negative delay", func(c *SimulationConfig) { c.DelayMin = -1 }, false},
		{"min above max", func(c *SimulationConfig) { c.DelayMin, c.DelayMax = 900, 100 }, false},
		{"error rate above one", func(c *SimulationConfig) { c.ErrorRate = 1.5 }, false},
		{"negative error rate", func(c *SimulationConfig) { c.ErrorRate = -0.1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultSimulationConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestConfigPatchApply(t *testing.T) {
	base := DefaultSimulationConfig()
	rate := 0.5
	persist := false

	got := ConfigPatch{
		ErrorRate:             &rate,
		PersistToLocalStorage: &persist,
		EnabledServices:       map[string]bool{ServiceTeams: false},
	}.Apply(base)

	assert.Equal(t, 0.5, got.ErrorRate)
	assert.False(t, got.PersistToLocalStorage)
	assert.False(t, got.EnabledServices[ServiceTeams])
	assert.True(t, got.EnabledServices[ServiceTasks])
	assert.Equal(t, base.DelayMin, got.DelayMin)

	// The base config is untouched.
	assert.True(t, base.EnabledServices[ServiceTeams])
	assert.True(t, base.PersistToLocalStorage)
}

func TestPatchFromRoundTrip(t *testing.T) {
	c := DefaultSimulationConfig()
	c.DelayMax = 42
	c.EnabledServices[ServiceAuth] = false

	got := PatchFrom(c).Apply(SimulationConfig{})
	require.NotNil(t, got.EnabledServices)
	assert.Equal(t, c, got)
}
