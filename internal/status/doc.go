// Package status implements the scan command: it enumerates candidate directories,
// inspects each repository concurrently, and renders the collected statuses as a
// colored table or as JSON/YAML documents.
//
// CommandBuilder wires the Cobra command, Scanner drives the bounded worker pool,
// ResultAggregator collects per-repository outcomes, and Printer renders them.
package status
