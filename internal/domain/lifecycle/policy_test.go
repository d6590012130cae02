package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/core/id"
)

type fakeStore struct {
	dependents int64
	softCalls  int
	hardCalls  int
}

func (f *fakeStore) CountDependents(ctx context.Context, entityID id.ID) (int64, error) {
	return f.dependents, nil
}

func (f *fakeStore) SoftDelete(ctx context.Context, entityID id.ID) error {
	f.softCalls++
	return nil
}

func (f *fakeStore) HardDelete(ctx context.Context, entityID id.ID) error {
	f.hardCalls++
	return nil
}

func TestDecide(t *testing.T) {
	assert.Equal(t, OutcomeHardDeleted, Decide(0))
	assert.Equal(t, OutcomeSoftDeleted, Decide(1))
	assert.Equal(t, OutcomeSoftDeleted, Decide(42))
}

func TestDelete_NoDependents_HardDeletes(t *testing.T) {
	store := &fakeStore{dependents: 0}

	outcome, err := Delete(context.Background(), store, id.New())
	require.NoError(t, err)

	assert.Equal(t, OutcomeHardDeleted, outcome)
	assert.Equal(t, 1, store.hardCalls)
	assert.Equal(t, 0, store.softCalls)
}

func TestDelete_WithDependents_SoftDeletes(t *testing.T) {
	store := &fakeStore{dependents: 3}

	outcome, err := Delete(context.Background(), store, id.New())
	require.NoError(t, err)

	assert.Equal(t, OutcomeSoftDeleted, outcome)
	assert.Equal(t, 1, store.softCalls)
	assert.Equal(t, 0, store.hardCalls)
}
