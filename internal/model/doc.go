// Package model defines the values that flow through one analysis workflow:
// the immutable Query, per-domain UnitResults, the RoutingDecision, and the
// merged WorkflowResult.
//
// Every value is created fresh per request and never outlives it.
package model
