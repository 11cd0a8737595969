package bankprofile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name     string
		base     map[string]any
		override map[string]any
		want     map[string]any
	}{
		{
			name:     "override wins scalar conflicts",
			base:     map[string]any{"date": "A", "currency": "EUR"},
			override: map[string]any{"date": "B"},
			want:     map[string]any{"date": "B", "currency": "EUR"},
		},
		{
			name: "nested objects merge key by key",
			base: map[string]any{
				"transactionPatterns": map[string]any{"date": "A"},
				"columnConfig":        map[string]any{"x": 1},
			},
			override: map[string]any{
				"transactionPatterns": map[string]any{"date": "B", "time": "C"},
			},
			want: map[string]any{
				"transactionPatterns": map[string]any{"date": "B", "time": "C"},
				"columnConfig":        map[string]any{"x": 1},
			},
		},
		{
			name:     "arrays replaced wholesale",
			base:     map[string]any{"headers": []any{"DATE", "AMOUNT"}},
			override: map[string]any{"headers": []any{"DATA"}},
			want:     map[string]any{"headers": []any{"DATA"}},
		},
		{
			name:     "object replaced by scalar",
			base:     map[string]any{"rules": map[string]any{"min": 1}},
			override: map[string]any{"rules": "off"},
			want:     map[string]any{"rules": "off"},
		},
		{
			name:     "empty override keeps base",
			base:     map[string]any{"a": 1},
			override: map[string]any{},
			want:     map[string]any{"a": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeepMerge(tt.base, tt.override)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeepMerge_DoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"nested": map[string]any{"keep": true}}
	override := map[string]any{"nested": map[string]any{"add": 1}}

	_ = DeepMerge(base, override)

	assert.Equal(t, map[string]any{"nested": map[string]any{"keep": true}}, base)
	assert.Equal(t, map[string]any{"nested": map[string]any{"add": 1}}, override)
}

func TestMergeBlock_NilSafe(t *testing.T) {
	assert.Equal(t, PatternBlock{}, mergeBlock(nil, nil))
	assert.Equal(t, PatternBlock{"a": 1}, mergeBlock(PatternBlock{"a": 1}, nil))
	assert.Equal(t, PatternBlock{"a": 1}, mergeBlock(nil, PatternBlock{"a": 1}))
}
