package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
	SecurityLeader                      // Access token with the leader role
)

// RouteSecurityConfig maps named HTTP routes and full gRPC method names to
// their required security level.
// Routes that only some callers may use (own data or leader) stay at
// SecurityAccess; the services check ownership.
var RouteSecurityConfig = map[string]SecurityLevel{
	// Public
	"Login":    SecurityPublic,
	"Healthz":  SecurityPublic,
	"Metrics":  SecurityPublic,
	"GetImage": SecurityPublic,

	// gRPC probes and tooling
	"/grpc.health.v1.Health/Check":                                   SecurityPublic,
	"/grpc.health.v1.Health/Watch":                                   SecurityPublic,
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo":      SecurityPublic,
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo": SecurityPublic,

	// Account - Access Protected
	"ChangePassword": SecurityAccess,
	"ChangePhone":    SecurityAccess,

	// Members
	"ListMembers":      SecurityLeader,
	"AddMember":        SecurityLeader,
	"UpdateMember":     SecurityLeader,
	"DeleteMember":     SecurityLeader,
	"GetProfile":       SecurityAccess,
	"GetMemberDetails": SecurityAccess,
	"GetTotals":        SecurityAccess,
	"ListRecords":      SecurityAccess,

	// Loans
	"CreateLoan": SecurityLeader,
	"CancelLoan": SecurityLeader,

	// Records
	"AssignRecord": SecurityLeader,
	"SettleRecord": SecurityLeader,
	"ResetRecord":  SecurityLeader,
	"DeleteRecord": SecurityLeader,
	"CashOut":      SecurityLeader,
	"UndoCashOut":  SecurityLeader,

	// Notifications
	"ListNotifications":    SecurityAccess,
	"MarkNotificationRead": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := RouteSecurityConfig[route]; exists {
		return level
	}
	// Default to access for unknown routes
	return SecurityAccess
}
