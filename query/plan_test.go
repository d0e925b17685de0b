package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	plan, err := Compile(`SEARCH "wrnch" OFFSET 1 LIMIT 2 RETURN name`)
	require.NoError(t, err)

	assert.Equal(t, "wrnch", plan.Term)
	assert.Nil(t, plan.Cutoff)
	assert.Equal(t, []Step{{Kind: StepOffset, N: 1}, {Kind: StepLimit, N: 2}}, plan.Steps)
	assert.Equal(t, []string{"name"}, plan.Fields)
	assert.True(t, plan.HasField("NAME"))
	assert.False(t, plan.HasField("manufacturer"))
}

func TestCompile_MaxDistAppliesRegardlessOfPosition(t *testing.T) {
	for _, input := range []string{
		`MAXDIST 0.3 SEARCH "a"`,
		`SEARCH "a" MAXDIST 0.3`,
		`MAXDIST 0.9 SEARCH "a" LIMIT 1 MAXDIST 0.3`,
	} {
		plan, err := Compile(input)
		require.NoError(t, err, input)
		require.NotNil(t, plan.Cutoff, input)
		assert.Equal(t, 0.3, *plan.Cutoff, input)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"LimitBeforeSearch", `LIMIT 5`, "unexpected LIMIT statement"},
		{"OffsetBeforeSearch", `OFFSET 1 SEARCH "a"`, "unexpected OFFSET statement"},
		{"DoubleSearch", `SEARCH "a" SEARCH "b"`, "unexpected SEARCH statement"},
		{"Empty", ``, "query is empty"},
		{"OnlyMaxDist", `MAXDIST 0.2`, "query is empty"},
		{"ParseError", `SEARCH "a" LIMIT`, "EOL was given"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrQuery)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestWindow(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	tests := []struct {
		name     string
		steps    []Step
		expected []int
	}{
		{"None", nil, items},
		{"Limit", []Step{{StepLimit, 3}}, []int{0, 1, 2}},
		{"Offset", []Step{{StepOffset, 8}}, []int{8, 9}},
		{"OffsetThenLimit", []Step{{StepOffset, 2}, {StepLimit, 3}}, []int{2, 3, 4}},
		{"LimitThenOffset", []Step{{StepLimit, 3}, {StepOffset, 2}}, []int{2}},
		{"LimitBeyondEnd", []Step{{StepLimit, 50}}, items},
		{"OffsetBeyondEnd", []Step{{StepOffset, 50}}, []int{}},
		{"LimitZero", []Step{{StepLimit, 0}}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Window(items, tt.steps))
		})
	}
}
