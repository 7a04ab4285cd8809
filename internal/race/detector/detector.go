package detector

import (
	"sync"

	"github.com/kolkov/threadsafety/internal/race/epoch"
	"github.com/kolkov/threadsafety/internal/race/goroutine"
	"github.com/kolkov/threadsafety/internal/race/shadowmem"
	"github.com/kolkov/threadsafety/internal/race/stackdepot"
	"github.com/kolkov/threadsafety/internal/race/syncshadow"
)

// Stats counts the accesses seen by a detector.
type Stats struct {
	TotalReads  uint64 // Read operations.
	TotalWrites uint64 // Write operations.
	Acquires    uint64 // Acquire operations (lock, atomic load).
	Releases    uint64 // Release operations (unlock, atomic store).
	Promotions  uint64 // Epoch → VectorClock read promotions.
}

// Detector implements the core FastTrack race detection algorithm for a
// set of named cells.
//
// One Detector is scoped to one scenario; its task clocks are only
// meaningful relative to the driver context that forked them.
type Detector struct {
	// shadowMemory stores VarState cells for all reported addresses.
	shadowMemory *shadowmem.ShadowMemory

	// syncShadow stores release clocks for mutexes and atomic cells.
	syncShadow *syncshadow.SyncShadow

	// stacks keeps the stacks of recorded accesses, so a report can show
	// where the earlier access happened.
	stacks *stackdepot.Depot

	// names maps cell addresses to human-readable names for reports.
	names sync.Map

	// reportedRaces tracks which races have already been reported.
	// Key format: "{type}:{addr}:{tid1}:{tid2}" (sorted task IDs).
	reportedRaces sync.Map

	// mu protects racesDetected, reports and stats.
	mu            sync.Mutex
	racesDetected int
	reports       []*RaceReport
	stats         Stats
}

// NewDetector creates and initializes a new race witness.
//
// Example:
//
//	d := NewDetector()
//	ctx := goroutine.Alloc(1)
//	d.OnWrite(0x1234, ctx)
func NewDetector() *Detector {
	return &Detector{
		shadowMemory: shadowmem.NewShadowMemory(),
		syncShadow:   syncshadow.NewSyncShadow(),
		stacks:       stackdepot.New(),
	}
}

// Describe attaches a name to addr. Reports mention the name next to the
// address.
func (d *Detector) Describe(addr uintptr, name string) {
	d.names.Store(addr, name)
}

func (d *Detector) nameOf(addr uintptr) string {
	if v, ok := d.names.Load(addr); ok {
		return v.(string)
	}
	return ""
}

// OnWrite handles a write to the cell at addr by the task ctx.
//
// Thread Safety: Safe for concurrent calls from multiple goroutines, as long
// as each ctx is used by one goroutine.
func (d *Detector) OnWrite(addr uintptr, ctx *goroutine.RaceContext) {
	vs := d.shadowMemory.GetOrCreate(addr)
	currentEpoch := ctx.GetEpoch()
	stack := d.stacks.Capture(1)

	vs.Lock()
	if vs.W.Same(currentEpoch) {
		vs.Unlock()
		return
	}

	var (
		raceType  string
		prevEpoch epoch.Epoch
		prevStack uint64
	)
	switch {
	case vs.W != 0 && !vs.W.HappensBefore(ctx.C):
		raceType, prevEpoch, prevStack = RaceTypeWriteWrite, vs.W, vs.WStack
	case vs.IsPromoted():
		if reader, ok := concurrentReader(vs, ctx); ok {
			raceType, prevEpoch = RaceTypeReadWrite, reader
		}
	default:
		if r := vs.ReadEpoch(); r != 0 && !r.HappensBefore(ctx.C) {
			raceType, prevEpoch, prevStack = RaceTypeReadWrite, r, vs.ReadStack()
		}
	}

	// The write is recorded even when it races, so later accesses are
	// checked against the most recent writer.
	vs.W = currentEpoch
	vs.WStack = stack
	vs.Demote()
	vs.Unlock()

	d.mu.Lock()
	d.stats.TotalWrites++
	d.mu.Unlock()

	ctx.IncrementClock()

	if raceType != "" {
		d.reportRace(raceType, addr, prevEpoch, currentEpoch, prevStack)
	}
}

// OnRead handles a read of the cell at addr by the task ctx.
func (d *Detector) OnRead(addr uintptr, ctx *goroutine.RaceContext) {
	vs := d.shadowMemory.GetOrCreate(addr)
	currentEpoch := ctx.GetEpoch()
	stack := d.stacks.Capture(1)

	vs.Lock()
	var (
		prevWrite epoch.Epoch
		prevStack uint64
	)
	if vs.W != 0 && !vs.W.HappensBefore(ctx.C) {
		prevWrite, prevStack = vs.W, vs.WStack
	}

	promoted := false
	if vs.IsPromoted() {
		vs.AddReader(currentEpoch)
	} else {
		r := vs.ReadEpoch()
		switch {
		case r == 0, r.TID() == ctx.TID, r.HappensBefore(ctx.C):
			// First reader, same reader, or an ordered successor.
			vs.SetReadEpoch(currentEpoch, stack)
		default:
			vs.PromoteToReadClock(currentEpoch)
			promoted = true
		}
	}
	vs.Unlock()

	d.mu.Lock()
	d.stats.TotalReads++
	if promoted {
		d.stats.Promotions++
	}
	d.mu.Unlock()

	ctx.IncrementClock()

	if prevWrite != 0 {
		d.reportRace(RaceTypeWriteRead, addr, prevWrite, currentEpoch, prevStack)
	}
}

// OnAcquire handles a lock (or atomic load) of the sync object at addr.
//
// [FT ACQUIRE]: Ct := Ct ⊔ Lm
func (d *Detector) OnAcquire(addr uintptr, ctx *goroutine.RaceContext) {
	d.syncShadow.GetOrCreate(addr).AcquireInto(ctx.C)

	d.mu.Lock()
	d.stats.Acquires++
	d.mu.Unlock()

	ctx.IncrementClock()
}

// OnRelease handles an unlock of the mutex at addr.
//
// [FT RELEASE]: Lm := Ct
func (d *Detector) OnRelease(addr uintptr, ctx *goroutine.RaceContext) {
	d.syncShadow.GetOrCreate(addr).SetReleaseClock(ctx.C)

	d.mu.Lock()
	d.stats.Releases++
	d.mu.Unlock()

	ctx.IncrementClock()
}

// OnReleaseMerge handles an atomic store to the cell at addr.
//
// [FT RELEASE MERGE]: Lm := Lm ⊔ Ct
func (d *Detector) OnReleaseMerge(addr uintptr, ctx *goroutine.RaceContext) {
	d.syncShadow.GetOrCreate(addr).MergeReleaseClock(ctx.C)

	d.mu.Lock()
	d.stats.Releases++
	d.mu.Unlock()

	ctx.IncrementClock()
}

// RacesDetected returns the number of unique races found.
func (d *Detector) RacesDetected() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.racesDetected
}

// Reports returns the unique race reports in detection order.
func (d *Detector) Reports() []*RaceReport {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*RaceReport, len(d.reports))
	copy(out, d.reports)
	return out
}

// Stats returns a snapshot of the access counters.
func (d *Detector) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// concurrentReader returns the first reader in the promoted read clock that
// did not happen-before ctx. Caller holds the cell lock.
func concurrentReader(vs *shadowmem.VarState, ctx *goroutine.RaceContext) (epoch.Epoch, bool) {
	rc := vs.ReadClock()
	for i := 0; i < rc.Len(); i++ {
		tid := uint16(i) //nolint:gosec // G115: Len() <= vectorclock.MaxThreads.
		clock := rc.Get(tid)
		if clock != 0 && clock > ctx.C.Get(tid) {
			return epoch.NewEpoch(uint8(tid), clock), true //nolint:gosec // G115: tid < 256.
		}
	}
	return 0, false
}

// reportRace records a race unless the same (type, address, task pair) was
// already reported. prevStack is the depot hash of the earlier access, zero
// when unknown.
func (d *Detector) reportRace(raceType string, addr uintptr, prevEpoch, currEpoch epoch.Epoch, prevStack uint64) {
	report := NewRaceReport(raceType, addr, d.nameOf(addr), prevEpoch, currEpoch)
	report.Previous.StackTrace = d.stacks.Get(prevStack)

	if _, alreadyReported := d.reportedRaces.LoadOrStore(report.DeduplicationKey, struct{}{}); alreadyReported {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.racesDetected++
	d.reports = append(d.reports, report)
}
