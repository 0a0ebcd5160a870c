package types

import "github.com/bytedance/sonic"

// Request is an inbound message from a view. Only the method name is
// typed; the remaining fields are method-specific and kept raw so the
// router never has to interpret payloads it merely forwards.
type Request struct {
	Method string
	Params map[string]interface{}
}

// UnmarshalJSON splits the required method field from the untyped rest.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if m, ok := raw["method"].(string); ok {
		r.Method = m
	}
	delete(raw, "method")
	r.Params = raw
	return nil
}

// String returns a string-typed param, or "" when absent or mistyped.
func (r *Request) String(key string) string {
	s, _ := r.Params[key].(string)
	return s
}

// Reply is an outbound message to a view. Delivery is fire-and-forget;
// any JSON-serializable value is acceptable.
type Reply interface{}
