package utils

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ImMortaLGuruji/legal-case-api/pkg/models"
)

// LogCaseEvent appends an audit record to case_events.
// Used to track stage changes and one-shot actions on a case.
// Errors are ignored on purpose (best-effort logging).
func LogCaseEvent(
	ctx context.Context,
	db *gorm.DB,
	caseID uuid.UUID,
	actorID *uuid.UUID,
	action string,
	oldStage, newStage models.CaseStage,
	note string,
) {
	_ = db.WithContext(ctx).Create(&models.CaseEvent{
		CaseID:   caseID,
		ActorID:  actorID,
		Action:   action,
		OldStage: oldStage,
		NewStage: newStage,
		Note:     note,
	}).Error
}
