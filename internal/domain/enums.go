package domain

// SignatureProvider identifies a registered e-signature provider.
type SignatureProvider string

const (
	ProviderDocuSign  SignatureProvider = "docusign"
	ProviderAdobeSign SignatureProvider = "adobe_sign"
)

// ValidProviders is the set of provider identifiers accepted at request creation.
var ValidProviders = map[SignatureProvider]bool{
	ProviderDocuSign:  true,
	ProviderAdobeSign: true,
}

// SignatureStatus is the canonical lifecycle state of a signature request.
type SignatureStatus string

const (
	SignatureStatusPending   SignatureStatus = "pending"
	SignatureStatusCompleted SignatureStatus = "completed"
	SignatureStatusDeclined  SignatureStatus = "declined"
	SignatureStatusCancelled SignatureStatus = "cancelled"
)

// IsTerminal reports whether the status admits no further webhook-driven transitions.
func (s SignatureStatus) IsTerminal() bool {
	switch s {
	case SignatureStatusCompleted, SignatureStatusDeclined, SignatureStatusCancelled:
		return true
	}
	return false
}

// AuditStatus is the outcome recorded on an audit event.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "SUCCESS"
	AuditStatusError   AuditStatus = "ERROR"
)

// Internal audit event types. Webhook events are audited under the raw
// provider-specific event type string instead.
const (
	AuditEventRequestCreated   = "REQUEST_CREATED"
	AuditEventRequestCancelled = "REQUEST_CANCELLED"
)

// UserRole defines the role hierarchy carried in gateway-issued tokens.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)
