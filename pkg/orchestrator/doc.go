// Package orchestrator wires the table pipeline: configuration resolution,
// column computation, strategy selection, layout rendering and output
// rendering. Layout failures and invalid configurations degrade to the
// failsafe fallback table, so Generate only errors on caller mistakes or a
// broken output renderer.
package orchestrator
