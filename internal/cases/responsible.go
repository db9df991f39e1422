package cases

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ImMortaLGuruji/legal-case-api/pkg/models"
)

// lookupResponsibleUsers maps lawyer partner ids to the login accounts linked
// to them. One query amortized across the whole batch; partners without a
// linked account are simply absent from the result.
func lookupResponsibleUsers(tx *gorm.DB, partnerIDs []uuid.UUID) (map[uuid.UUID]*uuid.UUID, error) {
	out := make(map[uuid.UUID]*uuid.UUID, len(partnerIDs))
	if len(partnerIDs) == 0 {
		return out, nil
	}
	var users []models.User
	if err := tx.Where("partner_id IN ?", partnerIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		if pid := users[i].PartnerID; pid != nil {
			id := users[i].ID
			out[*pid] = &id
		}
	}
	return out, nil
}
