package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDomain(t *testing.T) {
	tests := []struct {
		in   string
		want Domain
		ok   bool
	}{
		{"source", DomainSource, true},
		{"  Usage ", DomainUsage, true},
		{"PermissionsAgent", DomainPermissions, true},
		{"source_agent", DomainSource, true},
		{"billing", "", false},
		{"agent", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDomain(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortDomainsDeduplicatesInCanonicalOrder(t *testing.T) {
	got := SortDomains([]Domain{DomainPermissions, DomainSource, DomainPermissions, "billing"})
	assert.Equal(t, []Domain{DomainSource, DomainPermissions}, got)
}

func TestQueryFieldsAreCopied(t *testing.T) {
	fields := []FormField{{ID: "f1", Label: "Water source"}}
	q := NewQuery("lake intake", fields...)

	fields[0].Label = "changed"
	got := q.Fields()
	require.Len(t, got, 1)
	assert.Equal(t, "Water source", got[0].Label)

	got[0].Label = "changed again"
	assert.Equal(t, "Water source", q.Fields()[0].Label)
	assert.NotEmpty(t, q.ID())
	assert.Equal(t, "req-1", q.WithID("req-1").ID())
	assert.Equal(t, q.ID(), q.WithID("").ID())
}

func TestSummarize(t *testing.T) {
	results := map[Domain]UnitResult{
		DomainSource: {Domain: DomainSource, Status: StatusSuccess, ProcessingMethod: MethodRuleBased},
		DomainUsage: {
			Domain:           DomainUsage,
			Status:           StatusSuccess,
			ProcessingMethod: MethodHybridLLM,
			Enhancement:      &EnhancedPayload{Data: map[string]any{}},
		},
		DomainPermissions: SkippedResult(DomainPermissions),
	}

	s := Summarize(results)
	assert.Equal(t, Summary{Executed: 2, Skipped: 1, EnhancedCount: 1, RuleBasedCount: 1}, s)

	results[DomainSource] = ErrorResult(DomainSource, "boom")
	assert.True(t, Summarize(results).HadErrors)
}

func TestDefaultRoutingSelectsEverything(t *testing.T) {
	d := DefaultRouting("garbage", "no json")
	assert.Equal(t, KnownDomains(), d.Targets)
	assert.Equal(t, RoutingDefault, d.Method)
	for _, k := range KnownDomains() {
		assert.True(t, d.Selects(k))
	}
}
