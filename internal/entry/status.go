package entry

import "fmt"

var allStatuses = []Status{
	StatusEmpty,
	StatusInProgress,
	StatusLockedJudge,
	StatusLockedAdmin,
	StatusOfflineJudge,
	StatusOfflineAdmin,
	StatusError,
}

// ParseStatus converts a stored status string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Known() {
		return "", fmt.Errorf("unknown entry status %q", s)
	}
	return status, nil
}

// Known reports whether s is one of the defined statuses.
func (s Status) Known() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Validated reports whether an entry in this status counts toward a score.
func (s Status) Validated() bool {
	switch s {
	case StatusLockedJudge, StatusLockedAdmin, StatusOfflineJudge, StatusOfflineAdmin:
		return true
	}
	return false
}

// Offline reports whether the entry was submitted offline and awaits sync.
func (s Status) Offline() bool {
	return s == StatusOfflineJudge || s == StatusOfflineAdmin
}

// ParseRole converts a role string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleJudge, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}
