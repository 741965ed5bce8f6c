package vtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modernc.org/sqlite/vtab"
)

// stubTable accepts the first usable equality constraint and records what
// Filter receives.
type stubTable struct {
	filtered []*FilterPlan
	args     [][]Value
}

func (s *stubTable) BestIndex(req *IndexRequest, b *PlanBuilder) error {
	for i, c := range req.Constraints {
		if c.Usable && c.Op == OpEQ {
			b.UseOmitted(i)
			b.SetEstimate(1, 1)
			b.MarkUnique()
			return nil
		}
	}
	return ErrNoPlan
}

func (s *stubTable) Open() (Cursor, error) { return &stubCursor{table: s}, nil }
func (s *stubTable) Disconnect() error     { return nil }
func (s *stubTable) Destroy() error        { return nil }

type stubCursor struct {
	table *stubTable
	done  bool
}

func (c *stubCursor) Filter(plan *FilterPlan, args []Value) error {
	c.table.filtered = append(c.table.filtered, plan)
	c.table.args = append(c.table.args, args)
	c.done = false
	return nil
}

func (c *stubCursor) Next() error               { c.done = true; return nil }
func (c *stubCursor) Eof() bool                 { return c.done }
func (c *stubCursor) Column(int) (Value, error) { return IntegerValue(7), nil }
func (c *stubCursor) Rowid() (int64, error)     { return 1, nil }
func (c *stubCursor) Close() error              { return nil }

func TestAdapterBestIndexTranslation(t *testing.T) {
	impl := &stubTable{}
	ta := &tableAdapter{name: "stub", impl: impl, plans: NewPlanRegistry()}

	info := &vtab.IndexInfo{
		Constraints: []vtab.Constraint{
			{Column: 2, Op: vtab.OpGT, Usable: true, ArgIndex: -1},
			{Column: 0, Op: vtab.OpEQ, Usable: true, ArgIndex: -1},
		},
		ColUsed: 0b101,
	}
	require.NoError(t, ta.BestIndex(info))

	assert.Equal(t, int64(1), info.IdxNum)
	assert.Equal(t, -1, info.Constraints[0].ArgIndex)
	assert.Equal(t, 0, info.Constraints[1].ArgIndex)
	assert.True(t, info.Constraints[1].Omit)
	assert.Equal(t, int64(1), info.EstimatedRows)
	assert.Equal(t, vtab.IndexScanUnique, info.IdxFlags&vtab.IndexScanUnique)
}

func TestAdapterNoPlanSurfacesError(t *testing.T) {
	ta := &tableAdapter{name: "stub", impl: &stubTable{}, plans: NewPlanRegistry()}
	info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
		{Column: 0, Op: vtab.OpGT, Usable: true, ArgIndex: -1},
	}}
	assert.ErrorIs(t, ta.BestIndex(info), ErrNoPlan)
	assert.Equal(t, 0, ta.plans.Pending())
}

func TestAdapterFilterResolvesPlanAndValues(t *testing.T) {
	impl := &stubTable{}
	ta := &tableAdapter{name: "stub", impl: impl, plans: NewPlanRegistry()}

	info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
		{Column: 0, Op: vtab.OpEQ, Usable: true, ArgIndex: -1},
	}}
	require.NoError(t, ta.BestIndex(info))

	cur, err := ta.Open()
	require.NoError(t, err)
	require.NoError(t, cur.Filter(int(info.IdxNum), "", []vtab.Value{int64(42)}))

	require.Len(t, impl.filtered, 1)
	require.Len(t, impl.args[0], 1)
	assert.Equal(t, int64(42), impl.args[0][0].Int64())
	assert.False(t, cur.Eof())

	v, err := cur.Column(0)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestAdapterUnknownPlanIdFailsClosed(t *testing.T) {
	impl := &stubTable{}
	ta := &tableAdapter{name: "stub", impl: impl, plans: NewPlanRegistry()}

	cur, err := ta.Open()
	require.NoError(t, err)
	require.NoError(t, cur.Filter(99, "", nil))

	// The scan is empty and the wrapped cursor never sees the bogus plan.
	assert.True(t, cur.Eof())
	assert.Empty(t, impl.filtered)

	v, err := cur.Column(0)
	require.NoError(t, err)
	assert.Nil(t, v)

	id, err := cur.Rowid()
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestAdapterRejectedCandidatesDoNotAccumulate(t *testing.T) {
	// Statement preparation may call BestIndex several times while the
	// planner explores join orders; only the winning plan is filtered. The
	// losers must stay bounded on long-lived table instances.
	impl := &stubTable{}
	ta := &tableAdapter{name: "stub", impl: impl, plans: NewPlanRegistry()}

	var last *vtab.IndexInfo
	for i := 0; i < pendingKeep+20; i++ {
		info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
			{Column: 0, Op: vtab.OpEQ, Usable: true, ArgIndex: -1},
		}}
		require.NoError(t, ta.BestIndex(info))
		last = info
	}
	assert.Equal(t, pendingKeep, ta.plans.Pending())

	// The chosen plan, the newest, is still resolvable.
	cur, err := ta.Open()
	require.NoError(t, err)
	require.NoError(t, cur.Filter(int(last.IdxNum), "", []vtab.Value{int64(1)}))
	assert.False(t, cur.Eof())
}

func TestAdapterEvictedPlanIdErrors(t *testing.T) {
	impl := &stubTable{}
	ta := &tableAdapter{name: "stub", impl: impl, plans: NewPlanRegistry()}

	info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
		{Column: 0, Op: vtab.OpEQ, Usable: true, ArgIndex: -1},
	}}
	require.NoError(t, ta.BestIndex(info))

	cur, err := ta.Open()
	require.NoError(t, err)
	require.NoError(t, cur.Filter(int(info.IdxNum), "", []vtab.Value{int64(1)}))

	// Age the plan out of the consumed side.
	for i := 0; i < consumedKeep+1; i++ {
		id := ta.plans.Put(&FilterPlan{})
		_, res := ta.plans.Take(id)
		require.Equal(t, TakeOK, res)
	}

	// Re-running the cached statement must fail loudly, not scan empty.
	cur2, err := ta.Open()
	require.NoError(t, err)
	err = cur2.Filter(int(info.IdxNum), "", []vtab.Value{int64(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evicted")
}

func TestAdapterConsumedPlanServesReexecution(t *testing.T) {
	impl := &stubTable{}
	ta := &tableAdapter{name: "stub", impl: impl, plans: NewPlanRegistry()}

	info := &vtab.IndexInfo{Constraints: []vtab.Constraint{
		{Column: 0, Op: vtab.OpEQ, Usable: true, ArgIndex: -1},
	}}
	require.NoError(t, ta.BestIndex(info))

	// A cached prepared statement re-presents the same plan id on every run.
	for run := 0; run < 3; run++ {
		cur, err := ta.Open()
		require.NoError(t, err)
		require.NoError(t, cur.Filter(int(info.IdxNum), "", []vtab.Value{int64(run)}))
		assert.False(t, cur.Eof())
		require.NoError(t, cur.Close())
	}
	require.Len(t, impl.filtered, 3)
}
