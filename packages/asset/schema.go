package asset

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// waypointsSchema describes the GeoJSON the server sends for a search path:
// a single feature whose geometry is a list of [longitude, latitude] pairs.
const waypointsSchema = `{
	"type": "object",
	"required": ["features"],
	"properties": {
		"features": {
			"type": "array",
			"minItems": 1,
			"maxItems": 1,
			"items": {
				"type": "object",
				"required": ["geometry"],
				"properties": {
					"geometry": {
						"type": "object",
						"required": ["coordinates"],
						"properties": {
							"coordinates": {
								"type": "array",
								"items": {
									"type": "array",
									"minItems": 2,
									"items": {"type": "number"}
								}
							}
						}
					}
				}
			}
		}
	}
}`

var compiledWaypointsSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(waypointsSchema))
})

// validateWaypoints checks body against waypointsSchema. Violations are
// reported as ErrMalformedPayload.
func validateWaypoints(body []byte) error {
	schema, err := compiledWaypointsSchema()
	if err != nil {
		return fmt.Errorf("waypoints schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if result.Valid() {
		return nil
	}

	var errors []string
	for _, desc := range result.Errors() {
		errors = append(errors, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrMalformedPayload, strings.Join(errors, "; "))
}
