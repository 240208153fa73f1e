package clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/pgsafe/pkg/allowlist"
	"github.com/ekaya-inc/pgsafe/pkg/apperrors"
	"github.com/ekaya-inc/pgsafe/pkg/value"
)

func amountColumn(t *testing.T) allowlist.ColumnRef {
	t.Helper()
	a := allowlist.New(allowlist.Entry{Schema: "public", Table: "orders", Column: "amount"})
	col, err := a.Column("public", "orders", "amount")
	require.NoError(t, err)
	return col
}

func TestAggregateRender(t *testing.T) {
	amount := amountColumn(t)

	tests := []struct {
		name     string
		agg      Aggregate
		wantSQL  string
		wantName string
	}{
		{name: "count", agg: Count(amount), wantSQL: `count("public"."orders"."amount")`, wantName: "count_amount"},
		{name: "sum", agg: Sum(amount), wantSQL: `sum("public"."orders"."amount")`, wantName: "sum_amount"},
		{name: "avg", agg: Avg(amount), wantSQL: `avg("public"."orders"."amount")`, wantName: "avg_amount"},
		{name: "min", agg: Min(amount), wantSQL: `min("public"."orders"."amount")`, wantName: "min_amount"},
		{name: "max", agg: Max(amount), wantSQL: `max("public"."orders"."amount")`, wantName: "max_amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.agg.Render()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, got)
			assert.Equal(t, tt.wantName, tt.agg.Name())
		})
	}
}

func TestAggregateRejectsZeroColumn(t *testing.T) {
	_, err := Count(allowlist.ColumnRef{}).Render()
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestHavingRender(t *testing.T) {
	amount := amountColumn(t)

	b := &value.Binder{}
	got, err := NewHaving(Sum(amount), Greater, value.Int(1000)).Render(b)
	require.NoError(t, err)
	assert.Equal(t, `sum("public"."orders"."amount") > $1`, got)
	assert.Equal(t, []any{int64(1000)}, b.Args())
}

func TestHavingRejectsNonBinaryComparators(t *testing.T) {
	amount := amountColumn(t)

	for _, cmp := range []Comparator{InSet, Like, IsNull, IsNotNull} {
		b := &value.Binder{}
		_, err := NewHaving(Count(amount), cmp, value.Int(1)).Render(b)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	}
}
