package admin

import "errors"

var (
	ErrInvalidAction = errors.New("invalid review action")
	ErrNotReviewable = errors.New("campaign is not in a reviewable state")
	ErrCannotDemote  = errors.New("cannot remove your own admin access")
)
