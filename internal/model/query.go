package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// FormField is one field of the partially filled licence form sent with a
// request. Empty strings mean the value was not provided.
type FormField struct {
	ID       string `json:"id,omitempty"`
	Label    string `json:"label,omitempty"`
	Type     string `json:"type,omitempty"`
	Value    string `json:"value,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// Query is the immutable input of one workflow execution.
type Query struct {
	id     string
	text   string
	fields []FormField
}

// NewQuery builds a query with a fresh request ID. The field slice is copied.
func NewQuery(text string, fields ...FormField) Query {
	return Query{
		id:     uuid.NewString(),
		text:   text,
		fields: append([]FormField(nil), fields...),
	}
}

// WithID returns a copy of q carrying the given request ID.
func (q Query) WithID(id string) Query {
	if id == "" {
		return q
	}
	q.id = id
	return q
}

// ID returns the request ID.
func (q Query) ID() string { return q.id }

// Text returns the free-text request.
func (q Query) Text() string { return q.text }

// Fields returns a copy of the form fields.
func (q Query) Fields() []FormField {
	return append([]FormField(nil), q.fields...)
}

// HasForm reports whether any form fields were supplied.
func (q Query) HasForm() bool { return len(q.fields) > 0 }

// MarshalJSON renders the query for logs and published results.
func (q Query) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID     string      `json:"id"`
		Text   string      `json:"text"`
		Fields []FormField `json:"form_fields,omitempty"`
	}{q.id, q.text, q.fields})
}
