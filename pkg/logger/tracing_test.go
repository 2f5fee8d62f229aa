package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTraceID_Sortable(t *testing.T) {
	prev := NewTraceID()
	assert.Len(t, prev, 26)
	for i := 0; i < 100; i++ {
		next := NewTraceID()
		assert.Greater(t, next, prev, "trace IDs must be monotonically increasing")
		prev = next
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSymbol(ctx))

	ctx = WithTraceID(ctx, "01HZX")
	ctx = WithSymbol(ctx, "TSLA")
	assert.Equal(t, "01HZX", GetTraceID(ctx))
	assert.Equal(t, "TSLA", GetSymbol(ctx))
	assert.NotNil(t, WithContext(ctx))
}
