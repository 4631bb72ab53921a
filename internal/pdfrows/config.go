package pdfrows

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultYTolerance  = 5.0
	DefaultRunGap      = 4.0
	DefaultTerminator  = "NOTHING FOLLOWS"
	DefaultRecordStart = `^\d+\s+SN\d+`
)

// DefaultBoilerplate are the title and label lines printed on every CHED page.
var DefaultBoilerplate = []string{
	"LIST OF NSTP GRADUATES WITH SERIAL NUMBER",
	"Name of HEI",
	"Address",
	"NSTP Component",
}

// Config holds the row-reconstruction heuristics. All fields can be
// overridden from YAML.
type Config struct {
	// YTolerance is the largest vertical distance from a row's first run
	// that still counts as the same printed line.
	YTolerance float64 `yaml:"y_tolerance"`
	// RunGap is the horizontal gap between glyphs that splits two runs.
	RunGap      float64  `yaml:"run_gap"`
	Boilerplate []string `yaml:"boilerplate"`
	Terminator  string   `yaml:"terminator"`
	RecordStart string   `yaml:"record_start"`
	Layout      Layout   `yaml:"layout"`
	// Alternates are tried in order for records that do not fit Layout.
	Alternates []Layout `yaml:"alternates"`
}

func DefaultConfig() Config {
	return Config{
		YTolerance:  DefaultYTolerance,
		RunGap:      DefaultRunGap,
		Boilerplate: append([]string(nil), DefaultBoilerplate...),
		Terminator:  DefaultTerminator,
		RecordStart: DefaultRecordStart,
		Layout:      DefaultLayout,
		Alternates:  []Layout{CompactLayout},
	}
}

// LoadConfig reads a YAML override on top of DefaultConfig. A top-level
// `preset` key ("default" or "compact") selects the base layout.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read pdf layout file: %w", err)
	}
	return ParseConfig(raw)
}

// ParseConfig is LoadConfig for an in-memory document.
func ParseConfig(raw []byte) (Config, error) {
	cfg := DefaultConfig()

	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(raw, &head); err != nil {
		return cfg, fmt.Errorf("parse pdf layout: %w", err)
	}
	if head.Preset != "" {
		l, ok := LayoutByName(head.Preset)
		if !ok {
			return cfg, fmt.Errorf("unknown layout preset %q", head.Preset)
		}
		cfg.Layout = l
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse pdf layout: %w", err)
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	if c.YTolerance <= 0 {
		c.YTolerance = DefaultYTolerance
	}
	if c.RunGap <= 0 {
		c.RunGap = DefaultRunGap
	}
	if strings.TrimSpace(c.Terminator) == "" {
		c.Terminator = DefaultTerminator
	}
	if c.RecordStart == "" {
		c.RecordStart = DefaultRecordStart
	}
	if c.Layout.MinTokens <= 0 {
		c.Layout = DefaultLayout
	}
	alts := make([]Layout, 0, len(c.Alternates))
	for _, l := range c.Alternates {
		if l.MinTokens > 0 && l != c.Layout {
			alts = append(alts, l)
		}
	}
	c.Alternates = alts
	return c
}
