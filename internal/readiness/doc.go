// Package readiness decides whether a gateway may be submitted.
//
// Readiness is never stored on the gateway. It is recomputed from the plan's
// programme dates and consultation publications every time it is asked for,
// so a value returned here is only meaningful for the state it was computed from.
package readiness
