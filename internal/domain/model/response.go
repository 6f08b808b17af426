package model

import "encoding/json"

// Response is a successful gateway reply. Exactly one of Object and Items is
// set: listing endpoints return arrays, everything else an object.
type Response struct {
	StatusCode int
	Raw        json.RawMessage
	Object     map[string]any
	Items      []map[string]any
}

func (r *Response) IsList() bool { return r.Items != nil }

// Field returns a top-level string field of an object response.
func (r *Response) Field(key string) string {
	s, _ := r.Object[key].(string)
	return s
}

func (r *Response) ID() string     { return r.Field("id") }
func (r *Response) Status() string { return r.Field("status") }
