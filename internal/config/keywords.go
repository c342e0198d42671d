package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// KeywordTable is the file form of a topic keyword override. The file may be
// YAML, JSON or TOML; the format follows the extension.
//
//	mode: extend        # extend (default) or replace
//	keywords: [scurvy, rickets]
type KeywordTable struct {
	Mode     string   `mapstructure:"mode"`
	Keywords []string `mapstructure:"keywords"`
}

// LoadKeywords returns builtin unchanged when path is empty. Otherwise it
// reads the table at path and either appends its keywords to builtin or
// replaces builtin with them.
func LoadKeywords(path string, builtin []string) ([]string, error) {
	if path == "" {
		return builtin, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read keywords file %s: %w", path, err)
	}
	var t KeywordTable
	if err := v.Unmarshal(&t); err != nil {
		return nil, fmt.Errorf("decode keywords file %s: %w", path, err)
	}

	switch strings.ToLower(strings.TrimSpace(t.Mode)) {
	case "", "extend":
		out := make([]string, 0, len(builtin)+len(t.Keywords))
		out = append(out, builtin...)
		return append(out, t.Keywords...), nil
	case "replace":
		if len(t.Keywords) == 0 {
			return nil, fmt.Errorf("keywords file %s: replace mode with no keywords", path)
		}
		return t.Keywords, nil
	default:
		return nil, fmt.Errorf("keywords file %s: unknown mode %q", path, t.Mode)
	}
}
