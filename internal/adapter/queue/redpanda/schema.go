package redpanda

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed match_created.schema.json
var matchCreatedSchemaJSON string

var (
	schemaOnce      sync.Once
	matchCreatedSch *gojsonschema.Schema
	schemaErr       error
)

func matchCreatedSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		matchCreatedSch, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(matchCreatedSchemaJSON))
	})
	return matchCreatedSch, schemaErr
}

// validateMatchCreated checks payload against the published match.created contract.
func validateMatchCreated(payload []byte) error {
	sch, err := matchCreatedSchema()
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	res, err := sch.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid match.created payload: %s", strings.Join(msgs, "; "))
}
