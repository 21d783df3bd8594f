package domain

// Role represents user role in the system
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleLibrarian Role = "LIBRARIAN"
	RoleMember    Role = "MEMBER"
)

// DefaultRole is assigned when no valid role is supplied
const DefaultRole = RoleMember

// ValidRole reports whether r is one of the known roles
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleLibrarian, RoleMember:
		return true
	}
	return false
}

// BorrowStatus represents the lifecycle state of a borrow record.
// Transitions: ACTIVE -> RETURNED and ACTIVE -> OVERDUE -> RETURNED.
// RETURNED is terminal.
type BorrowStatus string

const (
	BorrowStatusActive   BorrowStatus = "ACTIVE"
	BorrowStatusOverdue  BorrowStatus = "OVERDUE"
	BorrowStatusReturned BorrowStatus = "RETURNED"
)

// ValidBorrowStatus reports whether s is a known borrow status
func ValidBorrowStatus(s BorrowStatus) bool {
	switch s {
	case BorrowStatusActive, BorrowStatusOverdue, BorrowStatusReturned:
		return true
	}
	return false
}
