package tenant

import "encoding/json"

// FunctionRequest is the generic tool envelope: {name, args, call}. Args stay
// raw; each tool parses and validates its own argument shape.
type FunctionRequest struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
	Call CallContext     `json:"call"`
}
