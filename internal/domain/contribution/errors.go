package contribution

import "errors"

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrCampaignNotActive  = errors.New("campaign is not accepting contributions")
	ErrDuplicateReference = errors.New("payment reference already recorded")
	ErrPaymentFailed      = errors.New("payment failed")
)
