package entry

import (
	"errors"
	"fmt"
)

// ErrNotAuthorized is returned when a judge tries to write over a locked or
// offline entry.
var ErrNotAuthorized = errors.New("entry is locked for this role")

// CanWrite decides whether role may replace an entry currently in status
// current, previously written by source. Admins may always write. Judges may
// write into empty, in-progress or failed entries, except a failed write that
// belongs to an admin.
func CanWrite(current Status, source Role, role Role) error {
	if role == RoleAdmin {
		return nil
	}
	if role != RoleJudge {
		return fmt.Errorf("%w: unknown role %q", ErrNotAuthorized, role)
	}
	switch current {
	case StatusEmpty, StatusInProgress:
		return nil
	case StatusError:
		if source == RoleAdmin {
			return fmt.Errorf("%w: failed admin write must be retried by an admin", ErrNotAuthorized)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotAuthorized, current)
}

// BeginEdit moves an entry into the ephemeral in-progress state. It is
// never persisted; it only tells a client whether editing may start.
func BeginEdit(current Status, source Role, role Role) (Status, error) {
	if err := CanWrite(current, source, role); err != nil {
		return current, err
	}
	return StatusInProgress, nil
}

// SubmittedStatus is the status a successful submission lands in.
func SubmittedStatus(role Role, online bool) Status {
	switch {
	case role == RoleAdmin && online:
		return StatusLockedAdmin
	case role == RoleAdmin:
		return StatusOfflineAdmin
	case online:
		return StatusLockedJudge
	default:
		return StatusOfflineJudge
	}
}

// Submit applies a submission by role to an entry in status current.
func Submit(current Status, source Role, role Role, online bool) (Status, error) {
	if err := CanWrite(current, source, role); err != nil {
		return current, err
	}
	return SubmittedStatus(role, online), nil
}

// Reconnect flips an offline entry to its locked counterpart. The second
// return value is false when current is not an offline status.
func Reconnect(current Status) (Status, bool) {
	switch current {
	case StatusOfflineJudge:
		return StatusLockedJudge, true
	case StatusOfflineAdmin:
		return StatusLockedAdmin, true
	}
	return current, false
}

// Fail moves an entry whose persistence failed to error. Only a role
// allowed to write over current (previously written by source) may flag it;
// otherwise current is returned with ErrNotAuthorized.
func Fail(current Status, source Role, role Role) (Status, error) {
	if err := CanWrite(current, source, role); err != nil {
		return current, err
	}
	return StatusError, nil
}
