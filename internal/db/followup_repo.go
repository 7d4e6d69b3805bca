package db

import (
	"context"

	"touchbase/internal/types"
)

// FollowUpRepository is the relational implementation of the scheduler's
// FollowUpRegistrar contract: the system of record for human-facing
// follow-ups. The scheduler core only calls RegisterFollowUp; listing,
// completion, and deletion of follow-ups belong to the contact-management
// side of the platform and are not exposed here.
type FollowUpRepository struct {
	db DBTX
}

// NewFollowUpRepository creates a new FollowUpRepository backed by the
// given database connection (pool or transaction).
func NewFollowUpRepository(db DBTX) *FollowUpRepository {
	return &FollowUpRepository{db: db}
}

// RegisterFollowUp records a follow-up task for the contact and returns
// the created record with its database-assigned creation time.
//
// The contact is verified first so a due action whose contact has since
// been removed surfaces as ErrCodeNotFoundContact, which the processor
// treats as a per-action skip rather than a run failure. The verify and
// insert are two statements; a contact deleted between them fails the
// insert's foreign key and maps to the same error code.
func (r *FollowUpRepository) RegisterFollowUp(ctx context.Context, tenantID, contactID, taskID, note string) (*types.FollowUp, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM contacts WHERE id = $1 AND tenant_id = $2
		 )`,
		contactID,
		tenantID,
	).Scan(&exists)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to verify contact", err)
	}
	if !exists {
		return nil, types.NewAppError(types.ErrCodeNotFoundContact, "contact not found for follow-up", nil)
	}

	followUp := &types.FollowUp{
		ID:        taskID,
		TenantID:  tenantID,
		ContactID: contactID,
		Note:      note,
	}
	err = r.db.QueryRow(ctx,
		`INSERT INTO follow_ups (id, tenant_id, contact_id, note, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING created_at`,
		taskID,
		tenantID,
		contactID,
		nilIfEmpty(note),
	).Scan(&followUp.CreatedAt)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to register follow-up", err)
	}
	return followUp, nil
}
