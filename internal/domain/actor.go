package domain

// Actor is the authenticated caller of a ledger operation.
type Actor struct {
	UserID int32 `json:"user_id"`
	Role   Role  `json:"role"`
}

func (a Actor) IsLeader() bool {
	return a.Role == RoleLeader
}

// CanView reports whether the actor may read data owned by userID.
func (a Actor) CanView(userID int32) bool {
	return a.IsLeader() || a.UserID == userID
}

// RequireLeader returns an AccessDeniedError unless the actor is a leader.
func (a Actor) RequireLeader(action string) error {
	if !a.IsLeader() {
		return &AccessDeniedError{Action: action}
	}
	return nil
}

// RequireViewer returns an AccessDeniedError unless the actor may read userID's data.
func (a Actor) RequireViewer(action string, userID int32) error {
	if !a.CanView(userID) {
		return &AccessDeniedError{Action: action}
	}
	return nil
}
