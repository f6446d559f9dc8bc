package render

import (
	"strings"
)

// TemplateI18nConfig configures template-level translation helpers.
type TemplateI18nConfig struct {
	// FuncName customizes the translator helper name (defaults to "translate").
	FuncName string
	// LocaleFuncName customizes the locale helper name (defaults to
	// "current_locale").
	LocaleFuncName string
}

// TemplateI18nFuncs returns helpers for template engines bound to the locale,
// translator and missing handler of opts:
//
//	translate(key, ...args) string
//	current_locale() string
//
// Keys that cannot be resolved fall back like RenderOptions.Message.
func TemplateI18nFuncs(opts RenderOptions, cfg TemplateI18nConfig) map[string]any {
	translateName := strings.TrimSpace(cfg.FuncName)
	if translateName == "" {
		translateName = "translate"
	}
	localeName := strings.TrimSpace(cfg.LocaleFuncName)
	if localeName == "" {
		localeName = "current_locale"
	}

	locale := strings.TrimSpace(opts.Locale)
	if locale == "" {
		locale = DefaultLocale
	}

	return map[string]any{
		translateName: func(key string, params ...any) string {
			key = strings.TrimSpace(key)
			if key == "" {
				return ""
			}
			return opts.Message(key, params...)
		},
		localeName: func() string {
			return locale
		},
	}
}
