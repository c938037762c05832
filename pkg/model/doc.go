// Package model defines the typed table configuration, dataset and render
// output structures shared by every stage of the table pipeline. A render
// request starts as a TableConfig plus a slice of Records; the resolver merges
// and validates the configuration, the column computer derives the effective
// Column list, the performance strategist attaches an OptimizationDescriptor
// and a layout renderer produces a Grid that output renderers turn into HTML,
// text or JSON. Every value here is created per request and discarded once
// output is produced.
package model
