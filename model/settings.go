package model

// Settings holds process-wide mapper policy.
//
// Settings are consulted at definition time (whether timestamp fields are
// declared) and at synchronization time, and are expected to be configured
// once during startup, before definitions are created. Reconfiguring after
// definitions exist does not retrofit already-declared field sets.
type Settings struct {
	// Timestamps controls whether definitions carry created_at and
	// updated_at datetime fields maintained by the persistence layer.
	// Default: enabled.
	Timestamps bool

	// TableNamespace is prefixed to every definition's table name by the
	// persistence layer, e.g. "myapp_dev". Default: no prefix.
	TableNamespace string
}

// DefaultSettings returns the settings a fresh process starts with.
func DefaultSettings() Settings {
	return Settings{Timestamps: true}
}

var settings = DefaultSettings()

// Configure replaces the process-wide settings. Like field declaration,
// this belongs to the single-threaded startup phase.
func Configure(s Settings) {
	settings = s
}

// CurrentSettings returns the process-wide settings.
func CurrentSettings() Settings {
	return settings
}
