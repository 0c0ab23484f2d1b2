package marketplace

import "github.com/google/uuid"

// OperationClass describes who may invoke an operation.
type OperationClass int

const (
	// Public operations need no identity.
	Public OperationClass = iota
	// Authenticated operations need any resolved identity.
	Authenticated
	// EmployerOnly operations need an employer identity.
	EmployerOnly
	// JobSeekerOnly operations need a job seeker identity.
	JobSeekerOnly
)

func (c OperationClass) String() string {
	switch c {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case EmployerOnly:
		return "employer-only"
	case JobSeekerOnly:
		return "jobSeeker-only"
	default:
		return "unknown"
	}
}

// Authorize checks that caller may invoke an operation of the given class.
// A nil caller fails with ErrUnauthenticated unless the class is Public.
func Authorize(caller *User, class OperationClass) error {
	if class == Public {
		return nil
	}
	if caller == nil || caller.ID == uuid.Nil {
		return &ErrUnauthenticated{}
	}

	switch caller.Role {
	case RoleEmployer:
		switch class {
		case Authenticated, EmployerOnly:
			return nil
		case JobSeekerOnly:
			return &ErrForbidden{Reason: "job seekers only"}
		}
	case RoleJobSeeker:
		switch class {
		case Authenticated, JobSeekerOnly:
			return nil
		case EmployerOnly:
			return &ErrForbidden{Reason: "employers only"}
		}
	}
	return &ErrForbidden{Reason: "unknown role"}
}

// AuthorizeOwner checks that an employer caller owns a resource held by ownerID.
func AuthorizeOwner(caller *User, ownerID uuid.UUID) error {
	if err := Authorize(caller, EmployerOnly); err != nil {
		return err
	}
	if caller.ID != ownerID {
		return &ErrForbidden{Reason: "not the owner"}
	}
	return nil
}
