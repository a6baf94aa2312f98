package ir

// Version constants for the plan IR and optimizer.
const (
	// IRVersion is the plan IR schema version.
	IRVersion = "1"

	// OptimizerVersion is the qopt optimizer version.
	OptimizerVersion = "0.1.0"
)
