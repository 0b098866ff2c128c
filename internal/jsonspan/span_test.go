package jsonspan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirst(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"bare object", `{"route":["source"]}`, `{"route":["source"]}`, true},
		{"surrounded by prose", "Sure! {\"a\":1} hope that helps {\"b\":2}", `{"a":1}`, true},
		{"nested", `x {"a":{"b":{}}} y`, `{"a":{"b":{}}}`, true},
		{"brace in string", `{"s":"}{","n":1}`, `{"s":"}{","n":1}`, true},
		{"escaped quote", `{"s":"a\"}b"}`, `{"s":"a\"}b"}`, true},
		{"fenced block", "```json\n{\"route\": []}\n```", `{"route": []}`, true},
		{"no object", "I will check the water source.", "", false},
		{"unclosed", `{"route": ["source"`, "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := First(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
