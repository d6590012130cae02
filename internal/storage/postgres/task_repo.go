package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain"
	"atelier/internal/domain/task"
)

const taskTable = "task"

// TaskRepo implements task.Repository.
type TaskRepo struct {
	txm        *TxManager
	selectCols []string
}

// NewTaskRepo creates a task repository.
func NewTaskRepo(txm *TxManager) *TaskRepo {
	return &TaskRepo{
		txm:        txm,
		selectCols: ExtractDBColumns[*task.Task](),
	}
}

func (r *TaskRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new task.
func (r *TaskRepo) Create(ctx context.Context, t *task.Task) error {
	data := StructToMap(t)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in task")
	}

	sql, args, err := r.builder().
		Insert(taskTable).
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepo) GetByID(ctx context.Context, taskID id.ID) (*task.Task, error) {
	t := &task.Task{}

	sql, args, err := r.builder().
		Select(r.selectCols...).
		From(taskTable).
		Where(squirrel.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(taskTable, taskID.String())
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	return t, nil
}

// Update modifies a task with optimistic locking.
func (r *TaskRepo) Update(ctx context.Context, t *task.Task) error {
	data := StructToMap(t)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in task")
	}

	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("task has no 'version' field or it is not an int")
	}
	delete(data, "id")
	delete(data, "version")
	delete(data, "created_at")

	sql, args, err := r.builder().
		Update(taskTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": t.ID}).
		Where(squirrel.Eq{"version": version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(taskTable, t.ID)
	}

	return nil
}

// Delete removes a task.
func (r *TaskRepo) Delete(ctx context.Context, taskID id.ID) error {
	sql, args, err := r.builder().
		Delete(taskTable).
		Where(squirrel.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(taskTable, taskID.String())
	}

	return nil
}

// List retrieves tasks matching the filter, due-soonest first.
func (r *TaskRepo) List(ctx context.Context, filter task.Filter) (domain.ListResult[*task.Task], error) {
	result := domain.ListResult[*task.Task]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().
		Select(r.selectCols...).
		From(taskTable)

	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.AssignedTo != nil {
		q = q.Where(squirrel.Eq{"assigned_to": *filter.AssignedTo})
	}
	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}

	countSQL, countArgs, err := r.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count tasks: %w", err)
	}

	q = q.OrderBy("due_at ASC NULLS LAST", "created_at ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list tasks: %w", err)
	}

	return result, nil
}
