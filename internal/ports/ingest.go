package ports

// EmailIngest defines the interface for an inbound email surface
type EmailIngest interface {
	// Start starts the ingest surface
	Start() error

	// Stop stops the ingest surface
	Stop() error
}
