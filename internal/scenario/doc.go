// Package scenario runs the four scripted scenarios of the thread safety
// demonstration.
//
//   - SafeSimple: two workers on a StatelessCalculator.
//   - UnsafeSimple: two workers on one SharedStateCalculator, the classic
//     servlet problem.
//   - SafeExhaustive: Config.Workers workers on a StatelessCalculator.
//   - UnsafeExhaustive: Config.Workers workers on one SharedStateCalculator.
//
// Each scenario announces itself, pauses, dispatches its workers, waits for
// all of them, pauses again and announces the end. The unsafe scenarios can
// carry a race witness that reports the data race on the shared cell.
package scenario
