package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// YAML is a kong.ConfigurationLoader for flat YAML files. Keys are flag
// names, with "-" or "_" as separator. Lists become comma separated values.
// A flag whose environment variable is set is left to the environment.
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}

	var resolver kong.ResolverFunc = func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		for _, env := range flag.Envs {
			if _, ok := os.LookupEnv(env); ok {
				return nil, nil
			}
		}

		raw, ok := values[flag.Name]
		if !ok {
			raw, ok = values[strings.ReplaceAll(flag.Name, "-", "_")]
		}
		if !ok || raw == nil {
			return nil, nil
		}
		return scalar(raw), nil
	}
	return resolver, nil
}

func scalar(v any) string {
	switch v := v.(type) {
	case []any:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
