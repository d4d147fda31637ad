package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys recorded by the use cases.
const (
	// Annotation
	AttrAirportCount   = attribute.Key("airports.count")
	AttrAirportInvalid = attribute.Key("airports.invalid")

	// Ingest
	AttrIngestSource  = attribute.Key("ingest.source")
	AttrIngestRows    = attribute.Key("ingest.rows")
	AttrIngestSkipped = attribute.Key("ingest.skipped")
)
