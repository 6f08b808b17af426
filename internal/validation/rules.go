package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Rule checks a value that already has the field's declared type.
// It returns an empty string when the value passes.
type Rule func(value any) string

// MinLen requires a string of at least n characters.
func MinLen(n int) Rule {
	return func(v any) string {
		if s, ok := v.(string); ok && utf8.RuneCountInString(s) < n {
			return fmt.Sprintf("min length is %d", n)
		}
		return ""
	}
}

// MaxLen requires a string of at most n characters.
func MaxLen(n int) Rule {
	return func(v any) string {
		if s, ok := v.(string); ok && utf8.RuneCountInString(s) > n {
			return fmt.Sprintf("max length is %d", n)
		}
		return ""
	}
}

// Pattern requires the whole string to match expr.
func Pattern(expr string) Rule {
	re := regexp.MustCompile(`^(?:` + expr + `)$`)
	return func(v any) string {
		if s, ok := v.(string); ok && !re.MatchString(s) {
			return fmt.Sprintf("value does not match regex '%s'", expr)
		}
		return ""
	}
}

// OneOf requires a string from the allowed set.
func OneOf(allowed ...string) Rule {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(v any) string {
		s, ok := v.(string)
		if !ok {
			return ""
		}
		if _, ok := set[s]; !ok {
			return fmt.Sprintf("unallowed value %s", s)
		}
		return ""
	}
}

// OneOfInt requires an integer from the allowed set.
func OneOfInt(allowed ...int64) Rule {
	set := make(map[int64]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(v any) string {
		n, ok := asInt(v)
		if !ok {
			return ""
		}
		if _, ok := set[n]; !ok {
			return fmt.Sprintf("unallowed value %d", n)
		}
		return ""
	}
}

// Min requires an integer of at least n.
func Min(n int64) Rule {
	return func(v any) string {
		if i, ok := asInt(v); ok && i < n {
			return fmt.Sprintf("min value is %d", n)
		}
		return ""
	}
}

// Max requires an integer of at most n.
func Max(n int64) Rule {
	return func(v any) string {
		if i, ok := asInt(v); ok && i > n {
			return fmt.Sprintf("max value is %d", n)
		}
		return ""
	}
}
