package auth

// DenyReason explains a denied Decision
type DenyReason string

const (
	DenyNone             DenyReason = ""
	DenyUnauthenticated  DenyReason = "unauthenticated"
	DenyInsufficientRole DenyReason = "insufficient_role"
	DenyNotOwner         DenyReason = "not_owner"
)

// Requirement is what a handler demands before touching a resource.
// The zero value only requires an authenticated identity.
type Requirement struct {
	Role    Role
	OwnerID *int64
}

// Decision is the outcome of Decide
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Err maps a denied decision to its error, nil when allowed
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case DenyInsufficientRole:
		return ErrInsufficientRole
	case DenyNotOwner:
		return ErrNotOwner
	default:
		return ErrMissingToken
	}
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Decide evaluates req for identity. Admins satisfy any role and bypass
// ownership. Decide has no side effects.
func Decide(identity *Identity, req Requirement) Decision {
	if identity == nil {
		return deny(DenyUnauthenticated)
	}

	if req.Role != "" && !identity.HasRole(req.Role) {
		return deny(DenyInsufficientRole)
	}

	if req.OwnerID != nil && !identity.IsAdmin && *req.OwnerID != identity.ID {
		return deny(DenyNotOwner)
	}

	return allow()
}

// RequirementOption configures a Requirement
type RequirementOption func(*Requirement)

// RequireRole demands role
func RequireRole(role Role) RequirementOption {
	return func(r *Requirement) {
		r.Role = role
	}
}

// RequireAdmin demands RoleAdmin
func RequireAdmin() RequirementOption {
	return RequireRole(RoleAdmin)
}

// RequireOwner demands the identity owns the resource, or is admin
func RequireOwner(ownerID int64) RequirementOption {
	return func(r *Requirement) {
		r.OwnerID = &ownerID
	}
}

// Authorize is Decide with the requirement built from opts, returning
// the denial as an error.
func Authorize(identity *Identity, opts ...RequirementOption) error {
	req := Requirement{}
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	return Decide(identity, req).Err()
}
