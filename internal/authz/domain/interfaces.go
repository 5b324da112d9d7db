package domain

// Well-known interface names with dedicated handling in the engine.
const (
	// InterfaceProperties is the properties access interface. Requests on it
	// are reparsed so the policy check targets the underlying property.
	InterfaceProperties = "org.freedesktop.DBus.Properties"

	// InterfaceSecurityApplication exposes read-only security metadata.
	InterfaceSecurityApplication = "org.busguard.Security.Application"

	// InterfaceSecurityClaimable accepts Claim requests while unclaimed.
	InterfaceSecurityClaimable = "org.busguard.Security.ClaimableApplication"

	// InterfaceSecurityManaged manages the installed policy and is only
	// reachable once the application is claimed.
	InterfaceSecurityManaged = "org.busguard.Security.ManagedApplication"
)

// stdInterfaces are bus bookkeeping interfaces exempt from authorization.
// Requests on them never reach the policy engine.
var stdInterfaces = map[string]struct{}{
	"org.freedesktop.DBus":                   {},
	"org.freedesktop.DBus.Peer":              {},
	"org.freedesktop.DBus.Introspectable":    {},
	"org.busguard.Bus":                       {},
	"org.busguard.Daemon":                    {},
	"org.busguard.Daemon.Debug":              {},
	"org.busguard.Bus.Peer.Authentication":   {},
	"org.busguard.Bus.Peer.Session":          {},
	"org.busguard.Introspectable":            {},
}

// StandardInterface reports whether the interface is bus bookkeeping exempt
// from authorization.
func StandardInterface(name string) bool {
	_, ok := stdInterfaces[name]
	return ok
}

// PermissionManagementInterface reports whether the interface belongs to the
// permission-management surface, which is authorized by fixed rules rather
// than by installed policy.
func PermissionManagementInterface(name string) bool {
	switch name {
	case InterfaceSecurityApplication, InterfaceSecurityClaimable, InterfaceSecurityManaged:
		return true
	}
	return false
}
