package order

import (
	errors "github.com/devrahi999/ihntopup/internal"
	"github.com/devrahi999/ihntopup/internal/core/common/validation"
)

// CreateTopupDTO is the request body for starting a top-up checkout. Exactly
// one of pack_id and card_id must be set: packs are in-game diamond top-ups
// delivered to a player UID, cards are voucher codes.
type CreateTopupDTO struct {
	PackID    *int64 `json:"pack_id,omitempty"`
	CardID    *int64 `json:"card_id,omitempty"`
	PlayerUID string `json:"player_uid,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

func (d CreateTopupDTO) Validate() *errors.AppError {
	if d.PackID == nil && d.CardID == nil {
		return errors.NewValidationError("either pack_id or card_id is required", errors.ErrCodeValidationFailed)
	}
	if d.PackID != nil && d.CardID != nil {
		return errors.NewValidationError("pack_id and card_id are mutually exclusive", errors.ErrCodeValidationFailed)
	}

	if d.PackID != nil {
		v := validation.NewValidator()
		v.Field("player_uid", d.PlayerUID).
			Required().
			MaxLen(32, errors.ErrCodeInvalidPlayerUID)
		return v.Validate()
	}

	if d.Quantity < 0 {
		return errors.NewValidationError("quantity must be positive", errors.ErrCodeInvalidQuantity)
	}
	return nil
}

// EffectiveQuantity defaults card purchases to a single voucher.
func (d CreateTopupDTO) EffectiveQuantity() int {
	if d.Quantity <= 0 {
		return 1
	}
	return d.Quantity
}
