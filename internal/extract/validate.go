package extract

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// compiledIdentitySchema is built once at init from identitySchema. Providers
// honoring json_schema output still occasionally return shapes that drift
// from the schema, so the response is validated locally before decoding.
var compiledIdentitySchema = jsonschema.MustCompileString("identity.json", string(identitySchema))

func validateIdentityJSON(raw json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decoding structured response: %v", err)
	}
	if err := compiledIdentitySchema.Validate(doc); err != nil {
		return fmt.Errorf("response does not match identity schema: %v", err)
	}
	return nil
}
