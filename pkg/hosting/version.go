package hosting

// Version information for the hosting module.
const (
	// Version is the current version of the hosting module.
	Version = "1.1.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"

	// RequiredLifecycleVersion is the oldest lifecycle module this adapter
	// runs against. Start relies on a stop during setup ending in
	// SetupNotStarted, which lifecycle 2.1.0 introduced.
	RequiredLifecycleVersion = "2.1.0"
)
