// Package harness provides golden-snapshot test support for the lowering
// compiler.
//
// A Scenario names an input expression tree plus the factory
// configuration to lower it under. Running a scenario produces a
// Snapshot: the lowered call tree in canonical JSON together with the
// resolved result type and fast-path eligibility. Snapshots are compared
// against golden files under testdata/golden, which serve as the source
// of truth for expected lowering output.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
