package vtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanBuilderAssignsContiguousSlots(t *testing.T) {
	req := &IndexRequest{Constraints: []IndexConstraint{
		{Column: 2, Op: OpEQ, Usable: true},
		{Column: 0, Op: OpGE, Usable: true},
		{Column: 0, Op: OpLE, Usable: true},
	}}
	b := NewPlanBuilder(req)

	// Acceptance order defines the slots, not the engine's constraint order.
	assert.Equal(t, 0, b.Use(1))
	assert.Equal(t, 1, b.Use(2))
	assert.Equal(t, 2, b.UseOmitted(0))

	plan := b.Plan()
	require.Len(t, plan.Arguments, 3)
	assert.Equal(t, FilterArgument{ArgIndex: 0, Column: 0, Op: OpGE}, plan.Arguments[0])
	assert.Equal(t, FilterArgument{ArgIndex: 1, Column: 0, Op: OpLE}, plan.Arguments[1])
	assert.Equal(t, FilterArgument{ArgIndex: 2, Column: 2, Op: OpEQ}, plan.Arguments[2])
}

func TestPlanBuilderDoubleUseKeepsSlot(t *testing.T) {
	req := &IndexRequest{Constraints: []IndexConstraint{{Column: 0, Op: OpEQ, Usable: true}}}
	b := NewPlanBuilder(req)
	assert.Equal(t, 0, b.Use(0))
	assert.Equal(t, 0, b.Use(0))
	assert.Len(t, b.Plan().Arguments, 1)
}

func TestPlanBuilderOutOfRange(t *testing.T) {
	b := NewPlanBuilder(&IndexRequest{})
	assert.Equal(t, -1, b.Use(0))
	assert.Equal(t, -1, b.Use(-1))
}

func TestPlanBuilderOutputs(t *testing.T) {
	req := &IndexRequest{ColumnsUsed: 0b101}
	b := NewPlanBuilder(req)
	b.SetEstimate(25, 50)
	b.MarkUnique()
	b.ConsumeOrder(true)

	assert.Equal(t, float64(25), b.EstimatedCost())
	assert.Equal(t, int64(50), b.EstimatedRows())
	assert.True(t, b.Unique())
	assert.True(t, b.OrderConsumed())

	plan := b.Plan()
	assert.True(t, plan.Descending)
	assert.True(t, plan.Columns.Has(0))
	assert.False(t, plan.Columns.Has(1))
	assert.True(t, plan.Columns.Has(2))
}

func TestColumnSet(t *testing.T) {
	var s ColumnSet
	s.Add(0)
	s.Add(63)
	s.Add(70) // beyond the bitset, ignored
	assert.True(t, s.Has(0))
	assert.True(t, s.Has(63))
	assert.False(t, s.Has(1))
	assert.False(t, s.Has(70))
}
