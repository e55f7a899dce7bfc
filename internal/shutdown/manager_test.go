package shutdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmemo/internal/logger"
)

func TestShutdownRunsComponentsInReverseOrder(t *testing.T) {
	m := NewManager(logger.Nop())

	var order []string
	m.Register("first", Func(func() { order = append(order, "first") }))
	m.Register("second", Func(func() { order = append(order, "second") }))

	m.Shutdown()

	assert.Equal(t, []string{"second", "first"}, order)
	require.Error(t, m.Context().Err(), "context must be cancelled before teardown")

	select {
	case <-m.Done():
	default:
		t.Fatal("done must be closed after shutdown")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	m := NewManager(logger.Nop())

	calls := 0
	m.Register("once", Func(func() { calls++ }))

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, 1, calls)
}
