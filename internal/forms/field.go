// Package forms implements per-field form state: value, validation error,
// and touched tracking. Handlers hold one Field per input and drive it
// through change/blur/validate, mirroring how the admin UI treats its
// controlled inputs.
package forms

import (
	"fmt"

	"github.com/KrownWealth/afrozonauto-admin/internal/http/validation"
)

// ChangeEvent is the decoded shape of a UI change event. Clients may post
// either a bare value or the whole event; both normalize to the same string.
type ChangeEvent struct {
	Target struct {
		Value string `json:"value"`
	} `json:"target"`
}

// Field tracks a single input's value, its current validation error, and
// whether the user has interacted with it. Errors only surface after a
// field is touched, so pristine forms render clean.
type Field struct {
	Value   string
	Error   string
	Touched bool

	initial    string
	validators []validation.Validator
}

// NewField creates a field with an initial value and its validator chain.
func NewField(initial string, validators ...validation.Validator) *Field {
	return &Field{
		Value:      initial,
		initial:    initial,
		validators: validators,
	}
}

// HandleChange updates the value from a bare string or a change-event
// shape. A touched field revalidates on every change so the error tracks
// the input; an untouched field stays quiet until blur.
func (f *Field) HandleChange(input any) {
	f.Value = normalizeChange(input)
	if f.Touched {
		f.runValidators()
	}
}

// HandleBlur marks the field as touched and validates it.
func (f *Field) HandleBlur() {
	f.Touched = true
	f.runValidators()
}

// Validate forces validation regardless of touched state, marks the field
// touched, and reports whether it passed. Submit paths call this on every
// field so untouched inputs still get checked.
func (f *Field) Validate() bool {
	f.Touched = true
	return f.runValidators()
}

// Reset restores the initial value and clears error and touched state.
func (f *Field) Reset() {
	f.Value = f.initial
	f.Error = ""
	f.Touched = false
}

// runValidators applies the chain and keeps the first failure's message.
func (f *Field) runValidators() bool {
	for _, v := range f.validators {
		if msg := v(f.Value); msg != "" {
			f.Error = msg
			return false
		}
	}
	f.Error = ""
	return true
}

func normalizeChange(input any) string {
	switch v := input.(type) {
	case string:
		return v
	case ChangeEvent:
		return v.Target.Value
	case *ChangeEvent:
		return v.Target.Value
	case map[string]any:
		if target, ok := v["target"].(map[string]any); ok {
			if value, ok := target["value"].(string); ok {
				return value
			}
		}
		return ""
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
