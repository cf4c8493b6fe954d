package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const identitySchemaURL = "https://agri-oasis.schemas.local/session/identity.schema.json"

const identitySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "name", "email", "role", "status", "joinDate", "sales", "products", "spent", "orders"],
  "properties": {
    "id":       {"type": "string", "minLength": 1},
    "name":     {"type": "string", "minLength": 1},
    "email":    {"type": "string", "minLength": 1},
    "role":     {"enum": ["farmer", "admin", "user"]},
    "status":   {"enum": ["active", "pending", "suspended"]},
    "joinDate": {"type": "string"},
    "sales":    {"type": "number"},
    "products": {"type": "number"},
    "spent":    {"type": "number"},
    "orders":   {"type": "number"}
  }
}`

// counterFields are coerced to numbers on login/signup responses
var counterFields = []string{"sales", "products", "spent", "orders"}

// IdentityValidator checks identity payloads against the identity schema
type IdentityValidator struct {
	schema *jsonschema.Schema
}

// NewIdentityValidator compiles the identity schema
func NewIdentityValidator() (*IdentityValidator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(identitySchemaURL, strings.NewReader(identitySchema)); err != nil {
		return nil, fmt.Errorf("identity schema load failed: %w", err)
	}
	compiled, err := c.Compile(identitySchemaURL)
	if err != nil {
		return nil, fmt.Errorf("identity schema compile failed: %w", err)
	}
	return &IdentityValidator{schema: compiled}, nil
}

// MustIdentityValidator is NewIdentityValidator that panics on error
func MustIdentityValidator() *IdentityValidator {
	v, err := NewIdentityValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Parse decodes a persisted identity exactly as stored. No coercion is
// applied: a persisted counter that is not a number is corruption.
func (v *IdentityValidator) Parse(data []byte) (Identity, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return Identity{}, err
	}
	return v.identityFrom(doc)
}

// ParseResponse decodes an identity from an authentication response.
// Counters that are missing or not numeric become 0; numeric strings are
// parsed.
func (v *IdentityValidator) ParseResponse(data []byte) (Identity, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return Identity{}, err
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return Identity{}, fmt.Errorf("identity is %T, not an object", doc)
	}
	for _, field := range counterFields {
		obj[field] = coerceNumber(obj[field])
	}
	return v.identityFrom(obj)
}

func (v *IdentityValidator) identityFrom(doc any) (Identity, error) {
	if err := v.schema.Validate(doc); err != nil {
		return Identity{}, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return Identity{}, err
	}
	var identity Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return Identity{}, err
	}
	return identity, nil
}

func decodeDocument(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty identity payload")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// coerceNumber follows the usual "numeric or zero" rule for counters
func coerceNumber(v any) float64 {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case float64:
		f = n
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
