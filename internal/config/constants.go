package config

// Version of the command language accepted by this interpreter.
const Version = "0.95"

// ConfigFileNames are the recognized configuration file names, in lookup order.
var ConfigFileNames = []string{"gcl.yaml", "gcl.yml"}

// Frame and stack sizing
const (
	// DefaultMaxCallDepth bounds nested user-function calls, including the top-level frame.
	DefaultMaxCallDepth = 1024
	// HardMaxCallDepth is the largest depth a configuration may request.
	HardMaxCallDepth = 1 << 16

	InitialFrameCount   = 16
	InitialOperandCount = 32
)

// Frame names used in diagnostics
const (
	TopLevelFrameName = "<top>"
	GlobalTableName   = "<global>"
)

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Colour modes for diagnostics printed by the driver
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)
