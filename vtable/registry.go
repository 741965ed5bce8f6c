package vtable

import (
	"math"
	"sync"
)

// consumedKeep bounds how many already-consumed plans a registry retains for
// statements the host re-executes from its cache.
const consumedKeep = 256

// pendingKeep bounds how many never-consumed plans a registry holds. The
// planner may run bestIndex several times per statement while exploring join
// orders, and only the chosen candidate is ever filtered; without a bound the
// rejected candidates would accumulate for the lifetime of the table
// instance.
const pendingKeep = 512

// TakeResult classifies the outcome of resolving a plan id.
type TakeResult int

const (
	// TakeOK means the plan was resolved, either on first consumption or on
	// re-execution of a cached statement.
	TakeOK TakeResult = iota
	// TakeEvicted means the id was issued but its plan has aged out of the
	// registry. A live statement hitting this deserves an error, not a
	// silently empty scan.
	TakeEvicted
	// TakeUnknown means the id was never issued by this registry.
	TakeUnknown
)

// PlanRegistry stores the FilterPlans produced by bestIndex until the cursor
// executing the matching query consumes them. Each table instance owns its
// own registry, so concurrently compiled queries against different
// connections cannot corrupt each other's plan-id correspondence.
//
// Consumption is selective: Take removes only the requested id, never the
// whole registry. A consumed plan is kept in a bounded side map because the
// host caches compiled statements and may run the same plan id again. Both
// the pending and the consumed side are bounded FIFO, oldest evicted first.
type PlanRegistry struct {
	mu           sync.Mutex
	nextID       int
	pending      map[int]*FilterPlan
	pendingOrder []int // issue order, oldest first
	consumed     map[int]*FilterPlan
	order        []int // consumption order, oldest first
}

// NewPlanRegistry returns an empty registry. Plan ids start at 1 so that zero
// never names a valid plan.
func NewPlanRegistry() *PlanRegistry {
	return &PlanRegistry{
		nextID:   1,
		pending:  make(map[int]*FilterPlan),
		consumed: make(map[int]*FilterPlan),
	}
}

// Put registers a plan, assigns it the next id and returns that id. When the
// pending side is full the oldest unconsumed plan is dropped.
func (r *PlanRegistry) Put(p *FilterPlan) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	if r.nextID > math.MaxInt32 {
		r.nextID = 1
	}
	p.ID = id
	r.pending[id] = p
	r.pendingOrder = append(r.pendingOrder, id)
	for len(r.pendingOrder) > pendingKeep {
		evict := r.pendingOrder[0]
		r.pendingOrder = r.pendingOrder[1:]
		delete(r.pending, evict)
	}
	return id
}

// Take resolves a plan id. The first call moves the plan from pending to the
// consumed side map; later calls for the same id keep serving it from there.
// Ids this registry issued but no longer holds resolve to TakeEvicted; ids it
// never issued resolve to TakeUnknown.
func (r *PlanRegistry) Take(id int) (*FilterPlan, TakeResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pending[id]; ok {
		delete(r.pending, id)
		r.consumed[id] = p
		r.order = append(r.order, id)
		if len(r.order) > consumedKeep {
			evict := r.order[0]
			r.order = r.order[1:]
			delete(r.consumed, evict)
		}
		return p, TakeOK
	}
	if p, ok := r.consumed[id]; ok {
		return p, TakeOK
	}
	if id >= 1 && id < r.nextID {
		return nil, TakeEvicted
	}
	return nil, TakeUnknown
}

// Pending reports how many plans await their first consumption.
func (r *PlanRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
