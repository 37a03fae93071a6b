// Package batch turns a list of operation descriptors into a single round
// trip to the Figma plugin and back into a caller-facing report.
//
// The flow for both batch kinds is the same:
//   - validate every descriptor (internal/model) before anything is sent
//   - short-circuit empty input without contacting the executor
//   - build an envelope that pairs each descriptor with its submission index
//   - for bundled commands, sequence by priority (high, normal, low) keeping
//     submission order within a class
//   - make exactly one Executor call
//   - parse the weakly typed reply, defaulting missing counters to zero
//   - re-correlate outcomes to submission order and render the text report
//
// Per-item failures are data in the Result. Only validation problems and
// round-trip failures surface as errors.
package batch
