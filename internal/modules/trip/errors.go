package trip

import "errors"

var (
	ErrNotFound     = errors.New("trip not found")
	ErrForbidden    = errors.New("trip belongs to another user")
	ErrNotApproved  = errors.New("trip is not in an approved state")
	ErrNoComponents = errors.New("approved itinerary has no bookable components")
)
