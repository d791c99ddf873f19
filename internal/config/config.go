// Package config loads runtime configuration from an optional YAML
// file, BRAINDROP_* environment variables, and command-line flags, in
// that order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	flag "github.com/spf13/pflag"
)

// Catalog selects where deck definitions come from. Dir points at a
// local directory of YAML deck files; GitURL clones a repo of them into
// CacheDir instead. Both may be empty, in which case only previously
// synced decks are served.
type Catalog struct {
	Dir      string `koanf:"dir"`
	GitURL   string `koanf:"git_url" validate:"omitempty,url"`
	CacheDir string `koanf:"cache_dir"`
}

// Session holds the answer feedback windows in milliseconds.
type Session struct {
	CorrectDelayMS int `koanf:"correct_delay_ms" validate:"min=0"`
	WrongDelayMS   int `koanf:"wrong_delay_ms" validate:"min=0"`
}

// Study holds the first-run study settings. They only apply to a fresh
// database; afterwards the persisted settings win.
type Study struct {
	NewPerDay     int `koanf:"new_per_day" validate:"min=1"`
	ReviewsPerDay int `koanf:"reviews_per_day" validate:"min=1"`
	ExamDays      int `koanf:"exam_days" validate:"min=1"`
}

type Config struct {
	Listen   string  `koanf:"listen" validate:"required"`
	Database string  `koanf:"database" validate:"required"`
	Catalog  Catalog `koanf:"catalog"`
	Session  Session `koanf:"session"`
	Study    Study   `koanf:"study"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:   ":8475",
		Database: "braindrop.db",
		Catalog: Catalog{
			CacheDir: ".braindrop-catalog",
		},
		Session: Session{
			CorrectDelayMS: 800,
			WrongDelayMS:   600,
		},
		Study: Study{
			NewPerDay:     10,
			ReviewsPerDay: 50,
			ExamDays:      21,
		},
	}
}

// Flags returns the flag set Load understands. The caller parses it
// before passing it in, so -h output stays in its hands.
func Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("braindrop", flag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")
	fs.String("listen", "", "HTTP listen address")
	fs.String("database", "", "path to the sqlite database")
	fs.String("catalog.dir", "", "directory of deck YAML files")
	fs.String("catalog.git_url", "", "git repository of deck YAML files")
	fs.String("catalog.cache_dir", "", "checkout directory for the catalog repo")
	return fs
}

// Load layers the config file, environment, and flags over the defaults
// and validates the result.
func Load(fs *flag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// Double underscores nest: BRAINDROP_CATALOG__GIT_URL becomes
	// catalog.git_url.
	err := k.Load(env.Provider("BRAINDROP_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "BRAINDROP_")), "__", ".")
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return Config{}, fmt.Errorf("loading flags: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
