package reference_repo

import (
	"context"

	"atelier/internal/core/id"
	"atelier/internal/domain/catalogs/procedure"
	"atelier/internal/storage/postgres"
)

const procedureTable = "cat_procedure"

// ProcedureRepo implements procedure.Repository.
type ProcedureRepo struct {
	*BaseReferenceRepo[*procedure.Procedure]
}

// NewProcedureRepo creates a new procedure repository.
func NewProcedureRepo(txm *postgres.TxManager) *ProcedureRepo {
	return &ProcedureRepo{
		BaseReferenceRepo: NewBaseReferenceRepo(txm, procedureTable,
			func() *procedure.Procedure { return &procedure.Procedure{} }),
	}
}

// CountDependents counts product lines using the procedure.
func (r *ProcedureRepo) CountDependents(ctx context.Context, procedureID id.ID) (int64, error) {
	return r.CountIn(ctx, "product_procedure_line", "procedure_id", procedureID)
}
