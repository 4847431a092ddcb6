package interactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageManager_EmitAndHead(t *testing.T) {
	m := NewMessageManager()

	assert.Nil(t, m.Head())

	id := m.EmitMessage("sync failed")
	head := m.Head()
	require.NotNil(t, head)
	assert.Equal(t, id, head.ID)
	assert.Equal(t, "sync failed", head.Message)
}

func TestMessageManager_DeduplicatesPendingText(t *testing.T) {
	m := NewMessageManager()

	first := m.EmitMessage("offline")
	second := m.EmitMessage("offline")
	assert.Equal(t, first, second)

	queue, _ := m.Observable().Get()
	assert.Len(t, queue, 1)

	// Once cleared, the same text gets a fresh ID
	m.ClearMessage(first)
	third := m.EmitMessage("offline")
	assert.NotEqual(t, first, third)
}

func TestMessageManager_ClearRemovesOnlyThatMessage(t *testing.T) {
	m := NewMessageManager()

	a := m.EmitMessage("one")
	b := m.EmitMessage("two")
	c := m.EmitMessage("three")

	m.ClearMessage(b)

	queue, ok := m.Observable().Get()
	require.True(t, ok)
	require.Len(t, queue, 2)
	assert.Equal(t, a, queue[0].ID)
	assert.Equal(t, c, queue[1].ID)

	// Clearing an unknown ID is a no-op
	m.ClearMessage(9999)
	queue, _ = m.Observable().Get()
	assert.Len(t, queue, 2)
}

func TestLoadingCounter_ObservableFlag(t *testing.T) {
	l := NewLoadingCounter()

	loading, ok := l.Observable().Get()
	require.True(t, ok)
	assert.False(t, loading)

	l.AddLoader()
	l.AddLoader()
	loading, _ = l.Observable().Get()
	assert.True(t, loading)

	l.RemoveLoader()
	loading, _ = l.Observable().Get()
	assert.True(t, loading)

	l.RemoveLoader()
	loading, _ = l.Observable().Get()
	assert.False(t, loading)

	// Underflow is ignored
	l.RemoveLoader()
	loading, _ = l.Observable().Get()
	assert.False(t, loading)
}
