package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ApplySettings overrides cfg with dotted key/value pairs such as
// {"board.max_stroke_gap": "150"}. Values are converted to the field types;
// unknown keys are rejected. cfg is left untouched on error.
func ApplySettings(cfg *Config, settings map[string]string) error {
	if len(settings) == 0 {
		return nil
	}

	raw, err := expand(settings)
	if err != nil {
		return err
	}

	next := *cfg
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
		Result:           &next,
	})
	if err != nil {
		return fmt.Errorf("create settings decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}

	*cfg = next
	return nil
}

// Settings flattens cfg into dotted key/value pairs accepted by
// ApplySettings.
func Settings(cfg Config) (map[string]string, error) {
	var nested map[string]any
	if err := mapstructure.Decode(cfg, &nested); err != nil {
		return nil, fmt.Errorf("flatten config: %w", err)
	}

	out := make(map[string]string)
	flatten("", nested, out)
	return out, nil
}

// Keys returns every settings key in sorted order.
func Keys() []string {
	settings, err := Settings(Default())
	if err != nil {
		return nil
	}

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func expand(settings map[string]string) (map[string]any, error) {
	root := make(map[string]any)

	for key, value := range settings {
		parts := strings.Split(key, ".")
		node := root
		for i, part := range parts {
			if part == "" {
				return nil, fmt.Errorf("invalid setting key %q", key)
			}
			if i == len(parts)-1 {
				if _, exists := node[part]; exists {
					return nil, fmt.Errorf("conflicting setting key %q", key)
				}
				node[part] = value
				break
			}

			child, ok := node[part]
			if !ok {
				next := make(map[string]any)
				node[part] = next
				node = next
				continue
			}
			next, ok := child.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("conflicting setting key %q", key)
			}
			node = next
		}
	}

	return root, nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			flatten(key, child, out)
			continue
		}
		out[key] = fmt.Sprint(v)
	}
}
