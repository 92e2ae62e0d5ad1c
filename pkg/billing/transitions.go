package billing

import "slices"

// Transition is one edge of the subscription state machine.
type Transition struct {
	From Status
	To   Status
}

// validTransitions defines all allowed state transitions. Anything absent
// is a conflicting transition; terminal states have no outgoing edges.
var validTransitions = map[Transition]bool{
	{StatusPending, StatusActive}:     true, // first verified payment
	{StatusActive, StatusActive}:      true, // verified renewal extends the deadline
	{StatusActive, StatusExpired}:     true, // renewal deadline passed without payment
	{StatusExpired, StatusActive}:     true, // re-subscription after expiry
	{StatusPending, StatusSuperseded}: true, // replaced by a new intent
	{StatusActive, StatusSuperseded}:  true, // replaced by a new intent
	{StatusExpired, StatusSuperseded}: true, // replaced by a new intent
	{StatusPending, StatusCancelled}:  true,
	{StatusActive, StatusCancelled}:   true,
	{StatusExpired, StatusCancelled}:  true,
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	return validTransitions[Transition{from, to}]
}

// TransitionsFrom returns all legal target statuses from the given status,
// sorted for deterministic callers and tests.
func TransitionsFrom(from Status) []Status {
	targets := make([]Status, 0, 4)
	for t := range validTransitions {
		if t.From == from {
			targets = append(targets, t.To)
		}
	}
	slices.Sort(targets)
	return targets
}
