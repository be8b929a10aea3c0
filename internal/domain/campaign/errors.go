package campaign

import "errors"

var (
	ErrCampaignNotFound    = errors.New("campaign not found")
	ErrNotCreator          = errors.New("only the creator can modify this campaign")
	ErrNotEditable         = errors.New("campaign can no longer be edited")
	ErrGoalImmutable       = errors.New("goal and deadline cannot change after approval")
	ErrHasContributions    = errors.New("campaign with contributions cannot be deleted")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrDeadlineInPast      = errors.New("deadline must be in the future")
	ErrDeadlineBeforeStart = errors.New("deadline must be after the start date")
	ErrNotActive           = errors.New("campaign is not active")
	ErrInvalidImage        = errors.New("invalid image file")
	ErrInvalidCreatorRef   = errors.New("creator does not exist")
	ErrCampaignConstraint  = errors.New("campaign violates a data constraint")
)
