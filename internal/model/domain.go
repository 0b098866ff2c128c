package model

import "strings"

// Domain names one analysis category.
type Domain string

const (
	// DomainSource covers where the water comes from
	DomainSource Domain = "source"

	// DomainUsage covers what the water is used for
	DomainUsage Domain = "usage"

	// DomainPermissions covers regulatory requirements and exemptions
	DomainPermissions Domain = "permissions"
)

var knownDomains = []Domain{DomainSource, DomainUsage, DomainPermissions}

// KnownDomains returns every known domain in canonical order.
func KnownDomains() []Domain {
	out := make([]Domain, len(knownDomains))
	copy(out, knownDomains)
	return out
}

// IsKnown reports whether d is one of the known domains.
func (d Domain) IsKnown() bool {
	for _, k := range knownDomains {
		if d == k {
			return true
		}
	}
	return false
}

// ParseDomain maps a loosely formatted name ("Source", "usage_agent",
// "PermissionsAgent") to a known domain.
func ParseDomain(name string) (Domain, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimSuffix(n, "agent")
	n = strings.TrimRight(n, "_- ")

	d := Domain(n)
	if !d.IsKnown() {
		return "", false
	}
	return d, true
}

// SortDomains returns the distinct known domains of ds in canonical order.
func SortDomains(ds []Domain) []Domain {
	seen := make(map[Domain]bool, len(ds))
	for _, d := range ds {
		seen[d] = true
	}

	out := make([]Domain, 0, len(seen))
	for _, k := range knownDomains {
		if seen[k] {
			out = append(out, k)
		}
	}
	return out
}
