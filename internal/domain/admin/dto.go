package admin

// CampaignReviewRequest is the body for POST /admin/campaigns/{id}/review
type CampaignReviewRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject request_changes"`
	Note   string `json:"note" validate:"max=1000"`
}

// TransactionReviewRequest is the body for POST /admin/transactions/{id}/review
type TransactionReviewRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Note   string `json:"note" validate:"max=1000"`
}

// SetAdminRequest toggles a profile's admin flag
type SetAdminRequest struct {
	IsAdmin *bool `json:"is_admin" validate:"required"`
}
