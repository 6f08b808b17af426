// Package validation checks request payloads against declarative schemas
// before anything is sent to the gateway.
package validation

import (
	"fmt"
	"math"
	"sort"
)

// Type is the expected dynamic type of a field value.
type Type int

const (
	TypeAny Type = iota
	TypeString
	TypeInteger
	TypeBoolean
	TypeDict
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	case TypeDict:
		return "dict"
	default:
		return "any"
	}
}

// Document is a payload keyed by wire field name.
type Document map[string]any

// Clone returns a deep copy; nested documents are copied too.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Clone()
	case map[string]any:
		return map[string]any(Document(t).Clone())
	default:
		return v
	}
}

// Errors maps a field name to its violations, in the order they were found.
type Errors map[string][]string

func (e Errors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Fields returns the offending field names in sorted order.
func (e Errors) Fields() []string {
	names := make([]string, 0, len(e))
	for k := range e {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Field is the constraint for a single field.
type Field struct {
	Type     Type
	Required bool
	Nullable bool
	// NonEmpty rejects "" and empty dicts.
	NonEmpty bool
	// Rules run in order once the type check has passed; all failures are kept.
	Rules []Rule
	// Schema is the sub-schema of a TypeDict field.
	Schema Schema
	// Excludes names sibling fields that must not be present alongside this one.
	Excludes []string
}

// Schema maps field names to their constraints.
type Schema map[string]Field

// Validate checks doc against schema and returns nil when doc is valid.
// It has no side effects; the same input always yields the same result.
func Validate(doc Document, schema Schema) Errors {
	errs := Errors{}
	validateDocument(errs, doc, schema)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateDocument(errs Errors, doc Document, schema Schema) {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		validateField(errs, doc, name, schema[name])
	}

	unknown := make([]string, 0)
	for name := range doc {
		if _, ok := schema[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		errs.add(name, "unknown field")
	}
}

func validateField(errs Errors, doc Document, name string, f Field) {
	value, present := doc[name]
	if !present {
		if f.Required {
			errs.add(name, fmt.Sprintf("%s is required", name))
		}
		return
	}
	if value == nil {
		if !f.Nullable {
			errs.add(name, "null value not allowed")
		}
		return
	}

	for _, other := range f.Excludes {
		if v, ok := doc[other]; ok && v != nil {
			errs.add(name, fmt.Sprintf("'%s' must not be present with '%s'", other, name))
		}
	}

	if !hasType(value, f.Type) {
		errs.add(name, fmt.Sprintf("must be of %s type", f.Type))
		return
	}
	if f.NonEmpty && isEmpty(value) {
		errs.add(name, "empty values not allowed")
		return
	}

	for _, rule := range f.Rules {
		if msg := rule(value); msg != "" {
			errs.add(name, msg)
		}
	}

	if f.Type == TypeDict && f.Schema != nil {
		nested := Errors{}
		validateDocument(nested, asDocument(value), f.Schema)
		for _, child := range nested.Fields() {
			for _, msg := range nested[child] {
				errs.add(name, child+": "+msg)
			}
		}
	}
}

func hasType(v any, t Type) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeInteger:
		_, ok := asInt(v)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeDict:
		switch v.(type) {
		case Document, map[string]any:
			return true
		}
		return false
	default:
		return true
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case string:
		return t == ""
	case Document:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func asDocument(v any) Document {
	switch t := v.(type) {
	case Document:
		return t
	case map[string]any:
		return Document(t)
	}
	return nil
}

// asInt accepts Go integer kinds and integral float64 values (as produced by
// encoding/json). Booleans are never integers.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
	}
	return 0, false
}
