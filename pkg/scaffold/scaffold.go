// Package scaffold builds model descriptors interactively. A PromptDriver asks
// the questions; the survey driver runs them in a terminal and tests script
// the answers.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-docgen/pkg/model"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// stringRules are the flag validations offered for STRING and TEXT fields.
var stringRules = []string{"notEmpty", "isEmail", "isUrl", "isUUID", "isAlphanumeric"}

// Option configures a Builder.
type Option func(*Builder)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(b *Builder) {
		b.driver = driver
	}
}

// Builder asks for a model name, a comment and a list of attributes.
type Builder struct {
	driver PromptDriver
}

// New constructs a Builder. Without WithPromptDriver the survey driver is used.
func New(options ...Option) (*Builder, error) {
	b := &Builder{}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	if b.driver == nil {
		b.driver = NewSurveyDriver(nil)
	}
	return b, nil
}

// Document asks for models until the user declines to add another one.
func (b *Builder) Document(ctx context.Context) (model.Document, error) {
	var doc model.Document
	for {
		m, err := b.Model(ctx)
		if err != nil {
			return model.Document{}, err
		}
		doc.Models = append(doc.Models, m)

		more, err := b.driver.Confirm(ctx, ConfirmConfig{Message: "Add another model?"})
		if err != nil {
			return model.Document{}, err
		}
		if !more {
			return doc, nil
		}
	}
}

// Model runs the prompts for one model. An empty attribute name ends the
// attribute loop once at least one attribute exists.
func (b *Builder) Model(ctx context.Context) (model.ModelDescriptor, error) {
	if b == nil || b.driver == nil {
		return model.ModelDescriptor{}, ErrNoDriver
	}

	name, err := b.driver.Input(ctx, InputConfig{
		Message:   "Model name",
		Validator: validateIdentifier,
	})
	if err != nil {
		return model.ModelDescriptor{}, err
	}
	if err := validateIdentifier(name); err != nil {
		return model.ModelDescriptor{}, fmt.Errorf("scaffold: model name: %w", err)
	}

	comment, err := b.driver.Input(ctx, InputConfig{Message: "Comment", Help: "Optional description of the model"})
	if err != nil {
		return model.ModelDescriptor{}, err
	}

	m := model.ModelDescriptor{Name: strings.TrimSpace(name), Comment: strings.TrimSpace(comment)}
	hasPrimaryKey := false
	for {
		attr, err := b.driver.Input(ctx, InputConfig{
			Message: "Attribute name",
			Help:    "Leave empty to finish",
			Validator: func(value string) error {
				return validateAttributeName(m.Attributes, value)
			},
		})
		if err != nil {
			return model.ModelDescriptor{}, err
		}
		attr = strings.TrimSpace(attr)

		if attr == "" {
			if len(m.Attributes) > 0 {
				return m, nil
			}
			if err := b.driver.Info(ctx, "A model needs at least one attribute."); err != nil {
				return model.ModelDescriptor{}, err
			}
			continue
		}
		if err := validateAttributeName(m.Attributes, attr); err != nil {
			if err := b.driver.Info(ctx, err.Error()); err != nil {
				return model.ModelDescriptor{}, err
			}
			continue
		}

		field, err := b.field(ctx, attr, !hasPrimaryKey)
		if err != nil {
			return model.ModelDescriptor{}, err
		}
		hasPrimaryKey = hasPrimaryKey || field.PrimaryKey
		m.Attributes = append(m.Attributes, model.Prop(attr, field))

		if err := b.driver.Info(ctx, fmt.Sprintf("Added %s (%s)", attr, field.Kind)); err != nil {
			return model.ModelDescriptor{}, err
		}
	}
}

func (b *Builder) field(ctx context.Context, name string, askPrimaryKey bool) (model.FieldDescriptor, error) {
	kinds := kindOptions(model.Kinds())
	idx, err := b.driver.Select(ctx, SelectConfig{Message: "Type of " + name, Options: kinds})
	if err != nil {
		return model.FieldDescriptor{}, err
	}
	if idx < 0 || idx >= len(kinds) {
		return model.FieldDescriptor{}, fmt.Errorf("scaffold: invalid type selection %d", idx)
	}
	field := model.FieldDescriptor{Kind: model.FieldKind(kinds[idx])}

	switch field.Kind {
	case model.KindEnum:
		raw, err := b.driver.Input(ctx, InputConfig{
			Message:   "Values",
			Help:      "Comma separated list",
			Validator: validateEnumValues,
		})
		if err != nil {
			return model.FieldDescriptor{}, err
		}
		field.EnumValues = splitValues(raw)
		if len(field.EnumValues) == 0 {
			return model.FieldDescriptor{}, fmt.Errorf("scaffold: %s: enum needs at least one value", name)
		}
	case model.KindArray:
		elements := kindOptions(elementKinds())
		idx, err := b.driver.Select(ctx, SelectConfig{Message: "Element type", Options: elements})
		if err != nil {
			return model.FieldDescriptor{}, err
		}
		if idx >= 0 && idx < len(elements) {
			field.ElementKind = model.FieldKind(elements[idx])
		}
	}

	if askPrimaryKey {
		pk, err := b.driver.Confirm(ctx, ConfirmConfig{Message: "Primary key?"})
		if err != nil {
			return model.FieldDescriptor{}, err
		}
		field.PrimaryKey = pk
	}
	if field.PrimaryKey {
		field.Nullable = model.Bool(false)
	} else {
		allowNull, err := b.driver.Confirm(ctx, ConfirmConfig{Message: "Allow null?", Default: true})
		if err != nil {
			return model.FieldDescriptor{}, err
		}
		if !allowNull {
			field.Nullable = model.Bool(false)
		}
	}

	comment, err := b.driver.Input(ctx, InputConfig{Message: "Comment", Help: "Optional"})
	if err != nil {
		return model.FieldDescriptor{}, err
	}
	field.Comment = strings.TrimSpace(comment)

	if !field.PrimaryKey {
		kind := field.Kind
		raw, err := b.driver.Input(ctx, InputConfig{
			Message: "Default value",
			Help:    "Optional",
			Validator: func(value string) error {
				_, err := parseDefault(kind, value, field.EnumValues)
				return err
			},
		})
		if err != nil {
			return model.FieldDescriptor{}, err
		}
		value, err := parseDefault(kind, raw, field.EnumValues)
		if err != nil {
			return model.FieldDescriptor{}, fmt.Errorf("scaffold: %s: %w", name, err)
		}
		field.Default = value
	}

	if field.Kind == model.KindString || field.Kind == model.KindText {
		picked, err := b.driver.MultiSelect(ctx, SelectConfig{Message: "Validations", Options: stringRules})
		if err != nil {
			return model.FieldDescriptor{}, err
		}
		for _, i := range picked {
			if i >= 0 && i < len(stringRules) {
				field.Validate = append(field.Validate, model.NormalizeRule(stringRules[i], true))
			}
		}
	}
	return field, nil
}

// parseDefault converts raw into a value of kind. Empty input means no
// default.
func parseDefault(kind model.FieldKind, raw string, enum []string) (any, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	switch kind {
	case model.KindInteger:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("default %q is not an integer", value)
		}
		return n, nil
	case model.KindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a number", value)
		}
		return f, nil
	case model.KindBoolean:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a boolean", value)
		}
		return b, nil
	case model.KindEnum:
		for _, v := range enum {
			if v == value {
				return value, nil
			}
		}
		return nil, fmt.Errorf("default %q is not one of %s", value, strings.Join(enum, ", "))
	case model.KindArray, model.KindJSON, model.KindJSONB:
		return nil, fmt.Errorf("defaults are not supported for %s", kind)
	}
	return value, nil
}

func validateIdentifier(value string) error {
	if !identifier.MatchString(strings.TrimSpace(value)) {
		return errors.New("use letters, digits and underscores, starting with a letter")
	}
	return nil
}

func validateAttributeName(attrs model.Object, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if err := validateIdentifier(value); err != nil {
		return err
	}
	if _, exists := attrs.Get(value); exists {
		return fmt.Errorf("attribute %q already exists", value)
	}
	return nil
}

func validateEnumValues(value string) error {
	if len(splitValues(value)) == 0 {
		return errors.New("enter at least one value")
	}
	return nil
}

func splitValues(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func elementKinds() []model.FieldKind {
	var out []model.FieldKind
	for _, kind := range model.Kinds() {
		if kind != model.KindArray && kind != model.KindEnum {
			out = append(out, kind)
		}
	}
	return out
}

func kindOptions(kinds []model.FieldKind) []string {
	out := make([]string, len(kinds))
	for i, kind := range kinds {
		out[i] = string(kind)
	}
	return out
}
