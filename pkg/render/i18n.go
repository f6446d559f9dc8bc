package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Translator resolves a message key for a locale. Args are applied as
// fmt-style arguments.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler returns the text rendered when key cannot be
// translated. params carries the message arguments; err is the translator
// failure, or ErrMissingTranslator when none was configured.
type MissingTranslationHandler func(locale, key string, params []any, err error) string

var (
	// ErrMissingTranslator is reported to OnMissing when no translator is set.
	ErrMissingTranslator = errors.New("render: translator not configured")
	// ErrMissingMessage is returned by Catalog when a key has no entry.
	ErrMissingMessage = errors.New("render: message not found")
)

// Message keys used by the built-in renderers.
const (
	MsgListOfObjects     = "apidoc.list_of_objects"
	MsgObjectData        = "apidoc.object_data"
	MsgExampleAllFields  = "apidoc.example.all_fields"
	MsgExampleRequired   = "apidoc.example.required_fields"
	MsgExampleSuccess    = "apidoc.example.success"
	MsgPermissionTitle   = "apidoc.permission.title"
	MsgPermissionRule    = "apidoc.permission.rule"
	MsgColumnAttribute   = "markdown.column.attribute"
	MsgColumnType        = "markdown.column.type"
	MsgColumnDescription = "markdown.column.description"
	MsgModelsHeading     = "markdown.models_heading"
	MsgRoutesHeading     = "template.routes_heading"
)

// Catalog is an in-memory Translator keyed by locale then message key.
// Regional locales fall back to their base language ("es-MX" to "es").
type Catalog map[string]map[string]string

var builtinCatalog = Catalog{
	"en": {
		MsgListOfObjects:     "List of objects **%s**",
		MsgObjectData:        "Object data **%s**",
		MsgExampleAllFields:  "Request example: All possible fields",
		MsgExampleRequired:   "Request example: Required fields only",
		MsgExampleSuccess:    "Successful response",
		MsgPermissionTitle:   "Role %s",
		MsgPermissionRule:    "Only users with the %s role can access this resource.",
		MsgColumnAttribute:   "Attribute",
		MsgColumnType:        "Type",
		MsgColumnDescription: "Description",
		MsgModelsHeading:     "Models",
		MsgRoutesHeading:     "Routes",
	},
	"es": {
		MsgListOfObjects:     "Lista de objetos **%s**",
		MsgObjectData:        "Datos del objeto **%s**",
		MsgExampleAllFields:  "Ejemplo Petición: Todos los campos posibles",
		MsgExampleRequired:   "Ejemplo Petición: Solo campos requeridos",
		MsgExampleSuccess:    "Respuesta Exitosa",
		MsgPermissionTitle:   "Rol %s",
		MsgPermissionRule:    "Solo los usuarios con el rol %s pueden acceder a este recurso.",
		MsgColumnAttribute:   "Atributo",
		MsgColumnType:        "Tipo de dato",
		MsgColumnDescription: "Descripción",
		MsgModelsHeading:     "Modelos",
		MsgRoutesHeading:     "Rutas",
	},
}

// BuiltinCatalog returns a copy of the bundled en/es messages.
func BuiltinCatalog() Catalog {
	out := make(Catalog, len(builtinCatalog))
	for locale, messages := range builtinCatalog {
		out[locale] = make(map[string]string, len(messages))
		for key, msg := range messages {
			out[locale][key] = msg
		}
	}
	return out
}

// Locales lists the locales of the catalog in sorted order.
func (c Catalog) Locales() []string {
	out := make([]string, 0, len(c))
	for locale := range c {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Translate implements Translator.
func (c Catalog) Translate(locale, key string, args ...any) (string, error) {
	for _, candidate := range localeChain(locale) {
		messages, ok := c[candidate]
		if !ok {
			continue
		}
		if msg, ok := messages[key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(msg, args...), nil
			}
			return msg, nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrMissingMessage, locale, key)
}

func localeChain(locale string) []string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		return []string{DefaultLocale}
	}
	chain := []string{locale}
	if base, _, ok := strings.Cut(strings.ReplaceAll(locale, "_", "-"), "-"); ok && base != "" {
		chain = append(chain, base)
	}
	return chain
}

// Message translates key with the configured translator and locale. When the
// translator cannot resolve it, OnMissing decides; without a handler the
// built-in English text is used.
func (opts RenderOptions) Message(key string, args ...any) string {
	locale := strings.TrimSpace(opts.Locale)
	if locale == "" {
		locale = DefaultLocale
	}
	t := opts.Translator
	if t == nil {
		t = builtinCatalog
	}
	return translate(locale, key, fallbackMessage(key, args), args, t, opts.OnMissing)
}

func fallbackMessage(key string, args []any) string {
	msg, err := builtinCatalog.Translate(DefaultLocale, key, args...)
	if err != nil {
		return ""
	}
	return msg
}

func translate(locale, key, fallback string, args []any, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, args, ErrMissingTranslator)
		}
		if strings.TrimSpace(fallback) != "" {
			return fallback
		}
		return key
	}

	result, err := t.Translate(locale, key, args...)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, args, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

func missingTranslationDefault(_ string, key string, _ []any, _ error) string {
	return key
}
