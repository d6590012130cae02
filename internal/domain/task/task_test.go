package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain"
)

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	tasks map[id.ID]*Task
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tasks: make(map[id.ID]*Task)}
}

func (f *fakeRepo) Create(ctx context.Context, t *Task) error {
	stored := *t
	f.tasks[t.ID] = &stored
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, taskID id.ID) (*Task, error) {
	t, ok := f.tasks[taskID]
	if !ok {
		return nil, apperror.NewNotFound("task", taskID.String())
	}
	copied := *t
	return &copied, nil
}

func (f *fakeRepo) Update(ctx context.Context, t *Task) error {
	stored := *t
	f.tasks[t.ID] = &stored
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, taskID id.ID) error {
	delete(f.tasks, taskID)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, filter Filter) (domain.ListResult[*Task], error) {
	out := make([]*Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return domain.ListResult[*Task]{Items: out, TotalCount: int64(len(out))}, nil
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusDone, false},
		{StatusInProgress, StatusDone, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusPending, false},
		{StatusDone, StatusInProgress, false},
		{StatusDone, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTransition_StampsCompletion(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopTxManager{})

	task := NewTask("polish rings")
	require.NoError(t, svc.Create(context.Background(), task))

	_, err := svc.Transition(context.Background(), task.ID, StatusInProgress)
	require.NoError(t, err)

	done, err := svc.Transition(context.Background(), task.ID, StatusDone)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, done.Status)
	require.NotNil(t, done.CompletedAt)

	// Terminal state rejects further moves.
	_, err = svc.Transition(context.Background(), task.ID, StatusCancelled)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestTransition_UnknownStatusRejected(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopTxManager{})

	task := NewTask("engrave pendant")
	require.NoError(t, svc.Create(context.Background(), task))

	_, err := svc.Transition(context.Background(), task.ID, Status("ARCHIVED"))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCreate_RequiresTitle(t *testing.T) {
	svc := NewService(newFakeRepo(), nopTxManager{})

	err := svc.Create(context.Background(), NewTask(""))
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}

func TestDelete_UnknownTask(t *testing.T) {
	svc := NewService(newFakeRepo(), nopTxManager{})

	err := svc.Delete(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
