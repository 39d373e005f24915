package config

import (
	"flag"
	"strconv"
)

// settingFlag records a command-line value for one settings key.
type settingFlag struct {
	key    string
	value  string
	isBool bool
	set    map[string]string
}

func (f *settingFlag) String() string { return f.value }

func (f *settingFlag) Set(s string) error {
	if f.isBool {
		if _, err := strconv.ParseBool(s); err != nil {
			return err
		}
	}
	f.value = s
	f.set[f.key] = s
	return nil
}

func (f *settingFlag) IsBoolFlag() bool { return f.isBool }

// Flags collects settings given on the command line.
type Flags struct {
	set map[string]string
}

// RegisterFlags registers one flag per settings key on fs, named after the
// key (for example -board.max_stroke_gap=150). Defaults shown in the usage
// text come from cfg.
func RegisterFlags(fs *flag.FlagSet, cfg Config) *Flags {
	f := &Flags{set: make(map[string]string)}

	defaults, err := Settings(cfg)
	if err != nil {
		return f
	}

	for _, key := range Keys() {
		value := defaults[key]
		fs.Var(&settingFlag{
			key:    key,
			value:  value,
			isBool: value == "true" || value == "false",
			set:    f.set,
		}, key, "sets "+key)
	}

	return f
}

// Overrides returns the settings given on the command line.
func (f *Flags) Overrides() map[string]string {
	out := make(map[string]string, len(f.set))
	for k, v := range f.set {
		out[k] = v
	}
	return out
}

// Apply overrides cfg with the settings given on the command line.
func (f *Flags) Apply(cfg *Config) error {
	return ApplySettings(cfg, f.set)
}
