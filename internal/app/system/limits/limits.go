// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxDocumentUpload caps tender document uploads. Provincial tender
	// packs run a few MiB; anything past this is a misbehaving client.
	MaxDocumentUpload = 32 << 20 // 32 MiB

	// MaxIngestBody caps direct OCDS release pushes to the ingest endpoint.
	// A full sync page batch stays well under this.
	MaxIngestBody = 64 << 20 // 64 MiB

	// MaxJSONBody is the general cap for JSON API request bodies
	// (search, workspace, profile updates).
	MaxJSONBody = 1 << 20 // 1 MB
)
