package types

import "fmt"

// Permission is the user's notification consent as reported by a PermissionGate.
type Permission int

const (
	// PermissionDefault means the user has not decided yet, or dismissed the prompt.
	PermissionDefault Permission = iota

	// PermissionGranted means notifications are allowed.
	PermissionGranted

	// PermissionDenied means notifications were explicitly refused.
	PermissionDenied
)

// String returns the string representation of the permission.
func (p Permission) String() string {
	switch p {
	case PermissionDefault:
		return "default"
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// ParsePermission converts "default", "granted" or "denied" into a Permission.
func ParsePermission(name string) (Permission, error) {
	switch name {
	case "default":
		return PermissionDefault, nil
	case "granted":
		return PermissionGranted, nil
	case "denied":
		return PermissionDenied, nil
	default:
		return PermissionDefault, fmt.Errorf("%w: %q", ErrUnknownPermission, name)
	}
}
