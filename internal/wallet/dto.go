package wallet

import (
	errors "github.com/devrahi999/ihntopup/internal"
	"github.com/devrahi999/ihntopup/internal/core/common/validation"
)

// MinRechargeAmount is the smallest recharge the gateway accepts.
const MinRechargeAmount = 10.0

// RechargeDTO is the request body for starting a wallet recharge checkout.
type RechargeDTO struct {
	Amount float64 `json:"amount"`
	Phone  string  `json:"phone,omitempty"`
}

func (d RechargeDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("amount", d.Amount).
		Required().
		MinFloat(MinRechargeAmount, errors.ErrCodeInvalidAmount)
	return v.Validate()
}
