package model

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"cardinity-gateway/internal/domain"
	"cardinity-gateway/internal/validation"
)

// Request is one gateway operation: where it goes, how, and what it carries.
// Constructors validate up front, so a Request is never observed in an
// invalid state.
type Request interface {
	Name() string
	Schema() validation.Schema
	Endpoint() string
	Method() string
	// Body is nil for read-only requests. Callers get a copy they may modify.
	Body() map[string]any
}

type mutable interface {
	Request
	withPatch(patch map[string]any) (Request, error)
}

// Update returns a re-validated copy of r with patch applied on top of its
// payload. The original is left untouched. Read-only requests fail with
// domain.ErrReadOnly.
func Update(r Request, patch map[string]any) (Request, error) {
	m, ok := r.(mutable)
	if !ok {
		return nil, fmt.Errorf("%s: %w", r.Name(), domain.ErrReadOnly)
	}
	return m.withPatch(patch)
}

// payload is the validated document behind every write request.
type payload struct {
	name   string
	schema validation.Schema
	doc    validation.Document
}

func newPayload(name string, schema validation.Schema, doc validation.Document) (payload, error) {
	if errs := validation.Validate(doc, schema); errs != nil {
		return payload{}, &domain.ValidationError{Model: name, Fields: errs}
	}
	return payload{name: name, schema: schema, doc: doc}, nil
}

func (p payload) Name() string              { return p.name }
func (p payload) Schema() validation.Schema { return p.schema }
func (p payload) Body() map[string]any      { return p.doc.Clone() }

func (p payload) patched(patch map[string]any) (payload, error) {
	doc := p.doc.Clone()
	for k, v := range patch {
		doc[k] = v
	}
	return newPayload(p.name, p.schema, doc)
}

func (p payload) str(key string) string {
	s, _ := p.doc[key].(string)
	return s
}

// readOnly backs the GET requests. They carry no payload.
type readOnly struct {
	name string
}

func (r readOnly) Name() string              { return r.name }
func (r readOnly) Schema() validation.Schema { return nil }
func (r readOnly) Method() string            { return http.MethodGet }
func (r readOnly) Body() map[string]any      { return nil }

// pathID rejects empty identifiers and escapes the rest for use as a path
// segment.
func pathID(model, field, id string) (string, error) {
	if id == "" {
		return "", &domain.ValidationError{
			Model:  model,
			Fields: map[string][]string{field: {field + " is required"}},
		}
	}
	return escape(id), nil
}

func escape(id string) string { return url.PathEscape(id) }

func withLimit(endpoint string, limit int) string {
	if limit <= 0 {
		return endpoint
	}
	return endpoint + "?limit=" + strconv.Itoa(limit)
}

func setString(doc validation.Document, key, v string) {
	if v != "" {
		doc[key] = v
	}
}

func setOptString(doc validation.Document, key string, v *string) {
	if v != nil {
		doc[key] = *v
	}
}

func setOptBool(doc validation.Document, key string, v *bool) {
	if v != nil {
		doc[key] = *v
	}
}
