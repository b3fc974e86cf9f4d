// Package config loads engine settings from defaults, an optional YAML file and
// KARAOKE_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/lchau1017/KaraokeLyrics-sub001/anim"
	"github.com/lchau1017/KaraokeLyrics-sub001/frame"
	"github.com/lchau1017/KaraokeLyrics-sub001/layout"
	"github.com/lchau1017/KaraokeLyrics-sub001/timing"
	"github.com/lchau1017/KaraokeLyrics-sub001/visual"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

const EnvPrefix = "KARAOKE_"

type Config struct {
	LogLevel  string          `yaml:"log_level" env:"LOG_LEVEL"`
	Timing    TimingConfig    `yaml:"timing" envPrefix:"TIMING_"`
	Animation AnimationConfig `yaml:"animation" envPrefix:"ANIM_"`
	Visual    VisualConfig    `yaml:"visual" envPrefix:"VISUAL_"`
	Layout    LayoutConfig    `yaml:"layout" envPrefix:"LAYOUT_"`
	Scroll    ScrollConfig    `yaml:"scroll" envPrefix:"SCROLL_"`
}

type TimingConfig struct {
	OffsetMs           int64   `yaml:"timing_offset_ms" env:"OFFSET_MS"`
	RecentWindowMs     int64   `yaml:"recent_window_ms" env:"RECENT_WINDOW_MS"`
	DistanceBucketsMs  []int64 `yaml:"distance_buckets_ms" env:"DISTANCE_BUCKETS_MS"`
	PinMaxAgeMs        int64   `yaml:"pin_max_age_ms" env:"PIN_MAX_AGE_MS"`
	PinSweepIntervalMs int64   `yaml:"pin_sweep_interval_ms" env:"PIN_SWEEP_INTERVAL_MS"`
}

type AnimationConfig struct {
	EnableAnimations             bool    `yaml:"enable_animations" env:"ENABLED"`
	EnableCharacterAnimations    bool    `yaml:"enable_character_animations" env:"CHARACTER"`
	EnableBlur                   bool    `yaml:"enable_blur" env:"BLUR"`
	CharacterAnimDurationBaseMs  float64 `yaml:"character_anim_duration_base_ms" env:"DURATION_BASE_MS"`
	CharacterAnimThresholdMsChar float64 `yaml:"character_anim_threshold_ms_per_char" env:"THRESHOLD_MS_PER_CHAR"`
	WindowFraction               float64 `yaml:"window_fraction" env:"WINDOW_FRACTION"`
	MaxCharacterScale            float64 `yaml:"max_character_scale" env:"MAX_SCALE"`
	MaxFloatOffset               float64 `yaml:"max_float_offset" env:"MAX_FLOAT_OFFSET"`
	MaxBlurRadius                float64 `yaml:"max_blur_radius" env:"MAX_BLUR"`
	FloatStyle                   string  `yaml:"float_style" env:"FLOAT_STYLE"`
	ScaleStyle                   string  `yaml:"scale_style" env:"SCALE_STYLE"`
	BlurStyle                    string  `yaml:"blur_style" env:"BLUR_STYLE"`
}

type VisualConfig struct {
	ActiveOpacity   float64       `yaml:"active_opacity" env:"ACTIVE_OPACITY"`
	ActiveScale     float64       `yaml:"active_scale" env:"ACTIVE_SCALE"`
	RecentDecay     string        `yaml:"recent_decay" env:"RECENT_DECAY"`
	RecentDecayMs   int64         `yaml:"recent_decay_ms" env:"RECENT_DECAY_MS"`
	RecentSteps     []visual.Step `yaml:"recent_steps"`
	PlayedFloor     float64       `yaml:"played_floor" env:"PLAYED_FLOOR"`
	UpcomingOpacity []float64     `yaml:"upcoming_opacity" env:"UPCOMING_OPACITY"`
	UpcomingFloor   float64       `yaml:"upcoming_floor" env:"UPCOMING_FLOOR"`
	PastOpacity     float64       `yaml:"past_opacity" env:"PAST_OPACITY"`
	EnableBlur      bool          `yaml:"enable_blur" env:"BLUR"`
	BlurFromBucket  int           `yaml:"blur_from_bucket" env:"BLUR_FROM_BUCKET"`
	BlurStep        float64       `yaml:"blur_step" env:"BLUR_STEP"`
	MaxBlur         float64       `yaml:"max_blur" env:"MAX_BLUR"`
	ActiveColor     string        `yaml:"active_color" env:"ACTIVE_COLOR"`
	InactiveColor   string        `yaml:"inactive_color" env:"INACTIVE_COLOR"`
}

type LayoutConfig struct {
	Font            string  `yaml:"font" env:"FONT"`
	FontSize        string  `yaml:"font_size" env:"FONT_SIZE"`
	FontWeight      string  `yaml:"font_weight" env:"FONT_WEIGHT"`
	RowHeightFactor float64 `yaml:"row_height_factor" env:"ROW_HEIGHT_FACTOR"`
	LineGap         float64 `yaml:"line_gap" env:"LINE_GAP"`
	VisibleBefore   int     `yaml:"visible_before" env:"VISIBLE_BEFORE"`
	VisibleAfter    int     `yaml:"visible_after" env:"VISIBLE_AFTER"`
	CacheLimit      int     `yaml:"cache_limit" env:"CACHE_LIMIT"`
}

type ScrollConfig struct {
	FPS       int     `yaml:"fps" env:"FPS"`
	Frequency float64 `yaml:"frequency" env:"FREQUENCY"`
	Damping   float64 `yaml:"damping" env:"DAMPING"`
}

func Default() Config {
	return Config{
		LogLevel: "warn",
		Timing: TimingConfig{
			RecentWindowMs:     1000,
			DistanceBucketsMs:  []int64{2000, 4000, 6000, 8000},
			PinMaxAgeMs:        10000,
			PinSweepIntervalMs: 1000,
		},
		Animation: AnimationConfig{
			EnableAnimations:             true,
			EnableCharacterAnimations:    true,
			EnableBlur:                   false,
			CharacterAnimDurationBaseMs:  1000,
			CharacterAnimThresholdMsChar: 200,
			WindowFraction:               0.8,
			MaxCharacterScale:            1.15,
			MaxFloatOffset:               6,
			MaxBlurRadius:                2,
			FloatStyle:                   "dip-and-rise",
			ScaleStyle:                   "swell",
			BlurStyle:                    "bounce",
		},
		Visual: VisualConfig{
			ActiveOpacity:   1,
			ActiveScale:     1.05,
			RecentDecay:     "stepped",
			RecentSteps:     []visual.Step{{Until: 1.0 / 3, Factor: 0.8}, {Until: 2.0 / 3, Factor: 0.6}, {Until: 1, Factor: 0.5}},
			PlayedFloor:     0.25,
			UpcomingOpacity: []float64{0.6, 0.45, 0.35},
			UpcomingFloor:   0.25,
			PastOpacity:     0.25,
			EnableBlur:      true,
			BlurFromBucket:  4,
			BlurStep:        1.5,
			MaxBlur:         4,
			ActiveColor:     "#ffffff",
			InactiveColor:   "#8c8c99",
		},
		Layout: LayoutConfig{
			Font:            "embed:lmroman10-regular",
			FontSize:        "32px",
			RowHeightFactor: layout.DefaultRowHeightFactor,
			LineGap:         12,
			VisibleBefore:   2,
			VisibleAfter:    4,
			CacheLimit:      512,
		},
		Scroll: ScrollConfig{FPS: 60, Frequency: 6, Damping: 1},
	}
}

// Load reads path (may be empty) over the defaults, applies the environment and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("config env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

// Validate rejects unknown names and out-of-range values and fills zero values with
// defaults.
func (c *Config) Validate() error {
	def := Default()

	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return invalid("log level %q", c.LogLevel)
	}

	t := &c.Timing
	if t.RecentWindowMs <= 0 {
		t.RecentWindowMs = def.Timing.RecentWindowMs
	}
	if len(t.DistanceBucketsMs) == 0 {
		t.DistanceBucketsMs = def.Timing.DistanceBucketsMs
	}
	if !slices.IsSorted(t.DistanceBucketsMs) {
		return invalid("distance buckets must be ascending: %v", t.DistanceBucketsMs)
	}
	if t.PinMaxAgeMs <= 0 {
		t.PinMaxAgeMs = def.Timing.PinMaxAgeMs
	}
	if t.PinSweepIntervalMs <= 0 {
		t.PinSweepIntervalMs = def.Timing.PinSweepIntervalMs
	}

	a := &c.Animation
	for _, s := range []*string{&a.FloatStyle, &a.ScaleStyle, &a.BlurStyle} {
		if _, err := anim.ParseStyle(*s); err != nil {
			return invalid("%v", err)
		}
	}
	if a.CharacterAnimDurationBaseMs <= 0 {
		a.CharacterAnimDurationBaseMs = def.Animation.CharacterAnimDurationBaseMs
	}
	if a.CharacterAnimThresholdMsChar < 0 {
		return invalid("character animation threshold %g", a.CharacterAnimThresholdMsChar)
	}
	if a.WindowFraction <= 0 || a.WindowFraction > 1 {
		if a.WindowFraction != 0 {
			return invalid("window fraction %g outside (0,1]", a.WindowFraction)
		}
		a.WindowFraction = def.Animation.WindowFraction
	}
	if a.MaxCharacterScale <= 0 {
		a.MaxCharacterScale = def.Animation.MaxCharacterScale
	}

	v := &c.Visual
	if _, err := visual.ParseDecayPreset(v.RecentDecay); err != nil {
		return invalid("%v", err)
	}
	if v.RecentDecayMs <= 0 {
		v.RecentDecayMs = t.RecentWindowMs
	}
	if len(v.RecentSteps) == 0 {
		v.RecentSteps = def.Visual.RecentSteps
	}
	if len(v.UpcomingOpacity) == 0 {
		v.UpcomingOpacity = def.Visual.UpcomingOpacity
	}
	for _, o := range append([]float64{v.ActiveOpacity, v.PlayedFloor, v.UpcomingFloor, v.PastOpacity}, v.UpcomingOpacity...) {
		if o < 0 || o > 1 {
			return invalid("opacity %g outside [0,1]", o)
		}
	}
	if v.ActiveScale <= 0 {
		v.ActiveScale = def.Visual.ActiveScale
	}
	if v.ActiveColor == "" {
		v.ActiveColor = def.Visual.ActiveColor
	}
	if v.InactiveColor == "" {
		v.InactiveColor = def.Visual.InactiveColor
	}
	for _, hex := range []string{v.ActiveColor, v.InactiveColor} {
		if _, err := colorful.Hex(hex); err != nil {
			return invalid("colour %q", hex)
		}
	}

	l := &c.Layout
	if l.Font == "" {
		l.Font = def.Layout.Font
	}
	if l.FontSize == "" {
		l.FontSize = def.Layout.FontSize
	}
	if layout.ParseLength(l.FontSize).ToPx(16) <= 0 {
		return invalid("font size %q", l.FontSize)
	}
	if l.RowHeightFactor < 0 {
		return invalid("row height factor %g", l.RowHeightFactor)
	}
	if l.VisibleBefore < 0 || l.VisibleAfter < 0 {
		return invalid("visible window %d/%d", l.VisibleBefore, l.VisibleAfter)
	}

	s := &c.Scroll
	if s.FPS <= 0 {
		s.FPS = def.Scroll.FPS
	}
	if s.Frequency <= 0 {
		s.Frequency = def.Scroll.Frequency
	}
	if s.Damping <= 0 {
		s.Damping = def.Scroll.Damping
	}
	return nil
}

// Level is the parsed log level; Validate has already rejected unknown names.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}

func (c Config) TimingOptions() timing.Options {
	return timing.Options{
		OffsetMs:          c.Timing.OffsetMs,
		RecentWindowMs:    c.Timing.RecentWindowMs,
		DistanceBucketsMs: slices.Clone(c.Timing.DistanceBucketsMs),
	}
}

func (c Config) AnimOptions() anim.Options {
	a := c.Animation
	float, _ := anim.ParseStyle(a.FloatStyle)
	scale, _ := anim.ParseStyle(a.ScaleStyle)
	blur, _ := anim.ParseStyle(a.BlurStyle)
	return anim.Options{
		Enabled:        a.EnableAnimations,
		WindowFraction: a.WindowFraction,
		DurationBaseMs: a.CharacterAnimDurationBaseMs,
		MaxFloatOffset: a.MaxFloatOffset,
		MaxScale:       a.MaxCharacterScale,
		MaxBlur:        a.MaxBlurRadius,
		EnableBlur:     a.EnableBlur,
		FloatStyle:     float,
		ScaleStyle:     scale,
		BlurStyle:      blur,
	}
}

func (c Config) CharAnimOptions() layout.CharAnimOptions {
	return layout.CharAnimOptions{
		Enabled:            c.Animation.EnableAnimations && c.Animation.EnableCharacterAnimations,
		ThresholdMsPerChar: c.Animation.CharacterAnimThresholdMsChar,
	}
}

func (c Config) VisualTiers() visual.Tiers {
	v := c.Visual
	decay, _ := visual.ParseDecayPreset(v.RecentDecay)
	window := v.RecentDecayMs
	if window <= 0 {
		window = c.Timing.RecentWindowMs
	}
	return visual.Tiers{
		ActiveOpacity:   v.ActiveOpacity,
		ActiveScale:     v.ActiveScale,
		IdleScale:       1,
		RecentDecay:     decay,
		RecentDecayMs:   window,
		RecentSteps:     slices.Clone(v.RecentSteps),
		PlayedFloor:     v.PlayedFloor,
		UpcomingOpacity: slices.Clone(v.UpcomingOpacity),
		UpcomingFloor:   v.UpcomingFloor,
		EnableBlur:      v.EnableBlur,
		BlurFromBucket:  v.BlurFromBucket,
		BlurStep:        v.BlurStep,
		MaxBlur:         v.MaxBlur,
		PastOpacity:     v.PastOpacity,
	}
}

// TextStyle resolves the font settings; sizes are in px.
func (c Config) TextStyle() layout.TextStyle {
	return layout.TextStyle{
		Font:   c.Layout.Font,
		Size:   layout.ParseLength(c.Layout.FontSize).ToPx(16),
		Weight: c.Layout.FontWeight,
	}
}

func (c Config) FrameOptions() frame.Options {
	style := c.TextStyle()
	active, _ := colorful.Hex(c.Visual.ActiveColor)
	inactive, _ := colorful.Hex(c.Visual.InactiveColor)
	rowHeight := 0.0
	if c.Layout.RowHeightFactor > 0 {
		rowHeight = style.Size * c.Layout.RowHeightFactor
	}
	return frame.Options{
		Timing:             c.TimingOptions(),
		Anim:               c.AnimOptions(),
		CharAnim:           c.CharAnimOptions(),
		Visual:             c.VisualTiers(),
		Style:              style,
		RowHeight:          rowHeight,
		LineGap:            c.Layout.LineGap,
		Active:             active,
		Inactive:           inactive,
		PinMaxAgeMs:        c.Timing.PinMaxAgeMs,
		PinSweepIntervalMs: c.Timing.PinSweepIntervalMs,
		VisibleBefore:      c.Layout.VisibleBefore,
		VisibleAfter:       c.Layout.VisibleAfter,
		ScrollFPS:          c.Scroll.FPS,
		ScrollFrequency:    c.Scroll.Frequency,
		ScrollDamping:      c.Scroll.Damping,
		CacheLimit:         c.Layout.CacheLimit,
	}
}
