// Package locale renders user-facing strings from embedded YAML tables.
package locale

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"reminderbot/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var files embed.FS

// Args are named template arguments, e.g. {"text": "Call the doctor"}
type Args map[string]string

var tables = mustLoad()

func mustLoad() map[domain.Language]map[string]string {
	out := make(map[domain.Language]map[string]string, len(domain.Languages))
	for _, lang := range domain.Languages {
		table, err := load(lang)
		if err != nil {
			panic(err)
		}
		out[lang] = table
	}
	return out
}

func load(lang domain.Language) (map[string]string, error) {
	data, err := files.ReadFile("locales/" + string(lang) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read locale %s: %w", lang, err)
	}

	table := make(map[string]string)
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse locale %s: %w", lang, err)
	}
	return table, nil
}

// Text returns the raw template for key. Unknown languages fall back to English,
// unknown keys render as the key itself.
func Text(lang domain.Language, key string) string {
	table, ok := tables[lang]
	if !ok {
		table = tables[domain.DefaultLanguage]
	}
	if s, ok := table[key]; ok {
		return s
	}
	return key
}

// Format renders key with named arguments substituted for {name} placeholders
func Format(lang domain.Language, key string, args Args) string {
	tmpl := Text(lang, key)
	if len(args) == 0 {
		return tmpl
	}

	pairs := make([]string, 0, len(args)*2)
	for name, value := range args {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// keys returns the sorted key set of a language table
func keys(lang domain.Language) []string {
	out := make([]string, 0, len(tables[lang]))
	for k := range tables[lang] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Match finds which key among candidates has text equal to s in any language.
// Reply-keyboard buttons stay recognizable after a language switch this way.
func Match(s string, candidates ...string) (string, bool) {
	for _, key := range candidates {
		for _, lang := range domain.Languages {
			if tables[lang][key] == s {
				return key, true
			}
		}
	}
	return "", false
}
