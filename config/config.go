package config

import (
	"os"

	"github.com/pelletier/go-toml"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// Logger is the process wide logger. It discards everything until
// InitLogger is called.
var Logger = zap.NewNop().Sugar()

// InitLogger points Logger at stderr. Verbose mode logs at Debug level,
// otherwise only warnings and errors are shown.
func InitLogger(isVerbose bool) error {
	cfg := zap.NewDevelopmentConfig()
	if isVerbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	lg, err := cfg.Build()
	if err != nil {
		return xerrors.Errorf("could not build logger: %w", err)
	}
	Logger = lg.Sugar()
	return nil
}

// Options are the decoding settings an options file can carry. Command
// line flags take precedence over them.
type Options struct {
	// MaxDepth bounds how deep nested previews are decoded.
	MaxDepth int `toml:"max_depth"`
	// Format is one of json, jsonl, text, msgpack.
	Format  string `toml:"format"`
	Verbose bool   `toml:"verbose"`
	// Workers limits how many capture files are decoded at once.
	Workers int `toml:"workers"`

	Symbols     bool `toml:"symbols"`
	Collections bool `toml:"collections"`
}

// Default returns the options used when no file is given.
func Default() *Options {
	return &Options{
		MaxDepth:    100,
		Format:      "json",
		Symbols:     true,
		Collections: true,
	}
}

// Load reads a TOML options file over the defaults.
func Load(conffile string) (*Options, error) {
	o := Default()

	confBytes, err := os.ReadFile(conffile)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(confBytes, o); err != nil {
		return nil, xerrors.Errorf("invalid options file %s: %w", conffile, err)
	}
	if err := o.Validate(); err != nil {
		return nil, xerrors.Errorf("invalid options file %s: %w", conffile, err)
	}
	return o, nil
}

// Validate checks option values that cannot be decoded with.
func (o *Options) Validate() error {
	switch o.Format {
	case "json", "jsonl", "text", "msgpack":
	default:
		return xerrors.Errorf("unknown format %q", o.Format)
	}
	if o.MaxDepth <= 0 {
		return xerrors.Errorf("max_depth must be positive, got %d", o.MaxDepth)
	}
	if o.Workers < 0 {
		return xerrors.Errorf("workers must not be negative, got %d", o.Workers)
	}
	return nil
}
