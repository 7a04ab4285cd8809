package detector

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/kolkov/threadsafety/internal/race/epoch"
)

// AccessType represents the type of memory access (Read or Write).
type AccessType int

const (
	// AccessRead indicates a read memory access.
	AccessRead AccessType = iota
	// AccessWrite indicates a write memory access.
	AccessWrite
)

// String returns the string representation of an AccessType.
func (a AccessType) String() string {
	switch a {
	case AccessRead:
		return "Read"
	case AccessWrite:
		return "Write"
	default:
		return "Unknown"
	}
}

// Race type constants for deduplication and reporting.
const (
	// RaceTypeWriteWrite indicates a write-write data race.
	RaceTypeWriteWrite = "write-write"
	// RaceTypeReadWrite indicates a read followed by a racing write.
	RaceTypeReadWrite = "read-write"
	// RaceTypeWriteRead indicates a write followed by a racing read.
	RaceTypeWriteRead = "write-read"
)

// maxStackDepth is the maximum number of stack frames to capture.
const maxStackDepth = 32

// AccessInfo describes one access that took part in a race.
type AccessInfo struct {
	// Type indicates whether this was a Read or Write access.
	Type AccessType

	// Addr is the address of the cell.
	Addr uintptr

	// TaskID is the worker that performed the access (0 is the driver).
	TaskID uint8

	// Epoch is the logical timestamp of the access.
	Epoch epoch.Epoch

	// StackTrace holds program counters for the access. For the previous
	// access it comes from the stack depot and may be empty.
	StackTrace []uintptr
}

// RaceReport represents a detected data race between two accesses.
type RaceReport struct {
	// Current is the access that triggered race detection.
	Current AccessInfo

	// Previous is the earlier conflicting access.
	Previous AccessInfo

	// Name is the cell name registered with Describe, if any.
	Name string

	// DeduplicationKey uniquely identifies this race location.
	// Format: "{type}:{addr}:{tid1}:{tid2}" where tid1 <= tid2.
	DeduplicationKey string
}

// generateDeduplicationKey generates a unique key for a race location.
//
// Task IDs are sorted so that (A vs B) and (B vs A) share a key.
//
// Example:
//
//	key := generateDeduplicationKey(RaceTypeWriteWrite, 0x1234, 5, 3)
//	// Returns: "write-write:0x1234:3:5"
func generateDeduplicationKey(raceType string, addr uintptr, tid1, tid2 uint8) string {
	return fmt.Sprintf("%s:0x%x:%d:%d", raceType, addr, min(tid1, tid2), max(tid1, tid2))
}

// captureStackTrace captures the current call stack, skipping skip frames.
func captureStackTrace(skip int) []uintptr {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	return pcs[:n]
}

// formatStackTrace formats a stack trace like Go's race detector:
//
//	calc.(*UnguardedCell).Store()
//	    /path/to/cell.go:42 +0x3b
func formatStackTrace(pcs []uintptr) string {
	if len(pcs) == 0 {
		return "  (no stack trace available)\n"
	}

	frames := runtime.CallersFrames(pcs)
	var buf strings.Builder

	for {
		frame, more := frames.Next()

		// Skip runtime frames and the witness itself.
		if strings.HasPrefix(frame.Function, "runtime.") ||
			strings.Contains(frame.Function, "/race/detector.") {
			if !more {
				break
			}
			continue
		}

		fmt.Fprintf(&buf, "  %s()\n      %s:%d +0x%x\n", frame.Function, frame.File, frame.Line, frame.PC&0xfff)

		if !more {
			break
		}
	}

	if buf.Len() == 0 {
		return "  (all frames filtered - runtime internal)\n"
	}
	return buf.String()
}

// NewRaceReport creates a RaceReport from epoch information and captures the
// stack of the current access.
func NewRaceReport(raceType string, addr uintptr, name string, prevEpoch, currEpoch epoch.Epoch) *RaceReport {
	report := &RaceReport{
		Current: AccessInfo{
			Addr:       addr,
			TaskID:     currEpoch.TID(),
			Epoch:      currEpoch,
			StackTrace: captureStackTrace(3),
		},
		Previous: AccessInfo{
			Addr:   addr,
			TaskID: prevEpoch.TID(),
			Epoch:  prevEpoch,
		},
		Name: name,
	}

	switch raceType {
	case RaceTypeReadWrite:
		report.Current.Type = AccessWrite
		report.Previous.Type = AccessRead
	case RaceTypeWriteRead:
		report.Current.Type = AccessRead
		report.Previous.Type = AccessWrite
	default:
		report.Current.Type = AccessWrite
		report.Previous.Type = AccessWrite
	}

	report.DeduplicationKey = generateDeduplicationKey(raceType, addr, prevEpoch.TID(), currEpoch.TID())
	return report
}

// Format writes the report in the layout of Go's race detector:
//
//	==================
//	WARNING: DATA RACE
//	Write at 0x000000c0000180a0 (value) by worker 7:
//	  calc.(*UnguardedCell).Store()
//	      /path/to/cell.go:42 +0x48
//	  [epoch: 3@7]
//
//	Previous write at 0x000000c0000180a0 (value) by worker 6:
//	  calc.(*UnguardedCell).Store()
//	      /path/to/cell.go:42 +0x48
//	  [epoch: 2@6]
//	==================
//
//nolint:errcheck // Error handling omitted for stderr output formatting
func (r *RaceReport) Format(w io.Writer) {
	name := ""
	if r.Name != "" {
		name = " (" + r.Name + ")"
	}

	fmt.Fprintf(w, "==================\n")
	fmt.Fprintf(w, "WARNING: DATA RACE\n")

	fmt.Fprintf(w, "%s at 0x%016x%s by worker %d:\n", r.Current.Type, r.Current.Addr, name, r.Current.TaskID)
	fmt.Fprint(w, formatStackTrace(r.Current.StackTrace))
	fmt.Fprintf(w, "  [epoch: %s]\n\n", r.Current.Epoch)

	fmt.Fprintf(w, "Previous %s at 0x%016x%s by worker %d:\n",
		strings.ToLower(r.Previous.Type.String()), r.Previous.Addr, name, r.Previous.TaskID)
	if len(r.Previous.StackTrace) > 0 {
		fmt.Fprint(w, formatStackTrace(r.Previous.StackTrace))
	} else {
		fmt.Fprintf(w, "  (previous access stack trace not available)\n")
	}
	fmt.Fprintf(w, "  [epoch: %s]\n", r.Previous.Epoch)

	fmt.Fprintf(w, "==================\n")
}

// String returns the formatted report.
func (r *RaceReport) String() string {
	var buf strings.Builder
	r.Format(&buf)
	return buf.String()
}
