package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Defaults registers default values under prefix. Registering a key also makes
// it visible to AutomaticEnv, so env-only deployments work without a config file.
func Defaults(v *viper.Viper, prefix string, values map[string]any) {
	for key, value := range values {
		v.SetDefault(prefix+"."+key, value)
	}
}

// BindEnvAliases binds additional environment variable names to key.
// The first variable that is set wins.
func BindEnvAliases(v *viper.Viper, key string, envNames ...string) error {
	canonical := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	args := append([]string{key, canonical}, envNames...)
	if err := v.BindEnv(args...); err != nil {
		return fmt.Errorf("failed to bind env for %s: %w", key, err)
	}
	return nil
}

// UnmarshalSection decodes every key below prefix into out.
//
// Unlike viper.Sub, each value is resolved through v.Get, so environment
// overrides and bound aliases are applied to nested keys.
func UnmarshalSection(v *viper.Viper, prefix string, out any) error {
	section := viper.New()
	p := strings.ToLower(prefix) + "."
	for _, key := range v.AllKeys() {
		if !strings.HasPrefix(key, p) {
			continue
		}
		section.Set(strings.TrimPrefix(key, p), v.Get(key))
	}

	if err := section.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to load %s config: %w", prefix, err)
	}
	return nil
}
