package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/formula/lang"
)

// resolve returns a [kong.ConfigurationLoader] for YAML (or JSON)
// configuration files.
//
// Flag values are read from the mapping under the key name, or from the
// top-level mapping when that key is absent:
//
//	config:
//	  log-level: debug
//	  log_pretty: false
//
// Keys may spell hyphens as underscores. Scalars are handed to kong as
// strings so they are parsed like command-line values; sequences become
// lists. Command-line flags override configuration values.
func resolve(name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := lang.ReadAll(r)
		if err != nil {
			return nil, err
		}

		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("configuration: %w", err)
		}

		if sub, ok := doc[name].(map[string]any); ok {
			doc = sub
		}

		cfg := make(config, len(doc))
		for key, v := range doc {
			cfg[key] = flagValue(v)
		}

		return cfg, nil
	}
}

// config implements [kong.Resolver] over a flat mapping of flag names.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// flagValue converts a decoded YAML value to the form kong parses.
func flagValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string, bool:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		list := make([]any, len(x))
		for i, e := range x {
			list[i] = flagValue(e)
		}

		return list
	}

	return fmt.Sprint(v)
}
