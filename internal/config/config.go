package config

import (
	"fmt"
	"time"

	"github.com/dshills/inkwell/internal/logging"
)

// Config is the complete configuration.
type Config struct {
	History  HistoryConfig  `yaml:"history"`
	Tracking TrackingConfig `yaml:"tracking"`
	Logging  logging.Config `yaml:"logging"`
	Collab   CollabConfig   `yaml:"collab"`
	Script   ScriptConfig   `yaml:"script"`
}

// HistoryConfig configures undo/redo.
type HistoryConfig struct {
	// MaxSize bounds the number of snapshots kept.
	MaxSize int `yaml:"maxSize"`
}

// TrackingConfig configures the operation log.
type TrackingConfig struct {
	// MaxChanges bounds the number of operations kept for catch-up.
	MaxChanges int `yaml:"maxChanges"`
}

// CollabConfig configures the relay and the collaboration client.
type CollabConfig struct {
	// Listen is the relay listen address, such as ":8090".
	Listen string `yaml:"listen"`

	// URL is the relay endpoint a client connects to.
	URL string `yaml:"url"`

	// Room names the shared document.
	Room string `yaml:"room"`

	// ClientID identifies this peer. Empty means generate one.
	ClientID string `yaml:"clientId"`

	// SendBuffer is the per-connection outgoing queue length.
	SendBuffer int `yaml:"sendBuffer"`
}

// ScriptConfig configures the Lua sandbox.
type ScriptConfig struct {
	// Timeout bounds a script run.
	Timeout time.Duration `yaml:"timeout"`

	// CallStackSize bounds Lua call depth.
	CallStackSize int `yaml:"callStackSize"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		History:  HistoryConfig{MaxSize: 500},
		Tracking: TrackingConfig{MaxChanges: 10000},
		Logging:  logging.DefaultConfig(),
		Collab: CollabConfig{
			Listen:     ":8090",
			Room:       "default",
			SendBuffer: 256,
		},
		Script: ScriptConfig{
			Timeout:       5 * time.Second,
			CallStackSize: 256,
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.History.MaxSize < 1:
		return fmt.Errorf("%w: history.maxSize must be positive", ErrInvalidValue)
	case c.Tracking.MaxChanges < 1:
		return fmt.Errorf("%w: tracking.maxChanges must be positive", ErrInvalidValue)
	case c.Collab.SendBuffer < 1:
		return fmt.Errorf("%w: collab.sendBuffer must be positive", ErrInvalidValue)
	case c.Script.Timeout < 0:
		return fmt.Errorf("%w: script.timeout must not be negative", ErrInvalidValue)
	case c.Script.CallStackSize < 1:
		return fmt.Errorf("%w: script.callStackSize must be positive", ErrInvalidValue)
	}
	return nil
}
