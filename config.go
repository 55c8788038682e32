package inkboard

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("inkboard: invalid config")

// Config holds the tunables of a Board. Zero values are not meaningful; start
// from DefaultConfig.
type Config struct {
	MinScale float64 `toml:"min_scale"`
	MaxScale float64 `toml:"max_scale"`
	// ZoomStep is the scale factor applied per wheel notch.
	ZoomStep float64 `toml:"zoom_step"`

	// ViewportPadding is added around the visible world rect before culling.
	ViewportPadding float64 `toml:"viewport_padding"`
	// DragThreshold is the pointer travel, in world units, that turns a press
	// into a drag or a live selection rectangle.
	DragThreshold float64 `toml:"drag_threshold"`
	// MinSelectionSize is the smallest committed rectangle edge.
	MinSelectionSize float64 `toml:"min_selection_size"`
	SelectionPadding float64 `toml:"selection_padding"`
	GroupPadding     float64 `toml:"group_padding"`

	SpawnDebounceMS int     `toml:"spawn_debounce_ms"`
	SpawnGap        float64 `toml:"spawn_gap"`

	FitMargin   float64 `toml:"fit_margin"`
	FitDuration float32 `toml:"fit_duration"`

	Navigation NavigationMode `toml:"navigation"`

	// CoalesceMoves applies at most one pointer move per Update.
	CoalesceMoves bool `toml:"coalesce_moves"`
	// SyncPersistence runs persistence jobs inline instead of on the worker.
	SyncPersistence bool `toml:"sync_persistence"`
	Debug           bool `toml:"debug"`

	LODDetail float64 `toml:"lod_detail"`
	LODLabel  float64 `toml:"lod_label"`
}

// DefaultConfig returns the standard tunables.
func DefaultConfig() Config {
	return Config{
		MinScale:         0.1,
		MaxScale:         5,
		ZoomStep:         1.1,
		ViewportPadding:  500,
		DragThreshold:    5,
		MinSelectionSize: 5,
		SelectionPadding: 20,
		GroupPadding:     20,
		SpawnDebounceMS:  300,
		SpawnGap:         40,
		FitMargin:        80,
		FitDuration:      0.35,
		Navigation:       NavigationTrackpad,
		CoalesceMoves:    true,
		LODDetail:        0.8,
		LODLabel:         0.4,
	}
}

// SpawnDebounce returns the per-type spawn debounce window.
func (c Config) SpawnDebounce() time.Duration {
	return time.Duration(c.SpawnDebounceMS) * time.Millisecond
}

// Hard limits a config may narrow but never widen.
const (
	minScaleLimit      = 0.1
	maxScaleLimit      = 5
	minSpawnDebounceMS = 200
	maxSpawnDebounceMS = 500
)

// Validate reports the first inconsistent value.
func (c Config) Validate() error {
	switch {
	case c.MinScale < minScaleLimit:
		return fmt.Errorf("%w: min_scale below %v, got %v", ErrInvalidConfig, minScaleLimit, c.MinScale)
	case c.MaxScale > maxScaleLimit:
		return fmt.Errorf("%w: max_scale above %v, got %v", ErrInvalidConfig, maxScaleLimit, c.MaxScale)
	case c.MaxScale < c.MinScale:
		return fmt.Errorf("%w: max_scale %v below min_scale %v", ErrInvalidConfig, c.MaxScale, c.MinScale)
	case c.ZoomStep <= 1:
		return fmt.Errorf("%w: zoom_step must exceed 1, got %v", ErrInvalidConfig, c.ZoomStep)
	case c.ViewportPadding < 0, c.DragThreshold < 0, c.MinSelectionSize < 0,
		c.SelectionPadding < 0, c.GroupPadding < 0, c.SpawnGap < 0, c.FitMargin < 0:
		return fmt.Errorf("%w: paddings and thresholds must not be negative", ErrInvalidConfig)
	case c.SpawnDebounceMS < minSpawnDebounceMS || c.SpawnDebounceMS > maxSpawnDebounceMS:
		return fmt.Errorf("%w: spawn_debounce_ms must be within [%d, %d], got %d",
			ErrInvalidConfig, minSpawnDebounceMS, maxSpawnDebounceMS, c.SpawnDebounceMS)
	case c.LODLabel > c.LODDetail:
		return fmt.Errorf("%w: lod_label %v above lod_detail %v", ErrInvalidConfig, c.LODLabel, c.LODDetail)
	}
	return nil
}

// LoadConfig decodes TOML over DefaultConfig, so absent keys keep their
// defaults, and validates the result.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("inkboard: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads and decodes a TOML config file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("inkboard: read config: %w", err)
	}
	return LoadConfig(data)
}

// MarshalText implements encoding.TextMarshaler.
func (m NavigationMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *NavigationMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "trackpad", "":
		*m = NavigationTrackpad
	case "mouse":
		*m = NavigationMouse
	default:
		return fmt.Errorf("%w: unknown navigation mode %q", ErrInvalidConfig, text)
	}
	return nil
}
