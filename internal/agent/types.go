package agent

import (
	"bytes"
	"encoding/json"
)

// Payload is the loosely-typed body a successful agent call carries.
// Result is kept raw and decoded defensively: remote agents return an
// object, a bare string, or nothing at all depending on the prompt.
type Payload struct {
	Result  json.RawMessage `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
	Status  string          `json:"status,omitempty"`
}

// InvokeResult is the envelope returned by the agent collaborator.
type InvokeResult struct {
	Success  bool     `json:"success"`
	Response *Payload `json:"response,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// UploadResult is the envelope returned by the file upload collaborator.
type UploadResult struct {
	Success  bool     `json:"success"`
	AssetIDs []string `json:"asset_ids"`
	Message  string   `json:"message,omitempty"`
}

// Unavailable reports whether the call should be treated as a failed
// agent invocation: transport-level failure, an explicit error field,
// an "error" status, or a success envelope with no payload at all.
func (r InvokeResult) Unavailable() bool {
	if !r.Success || r.Error != "" {
		return true
	}
	if r.Response == nil {
		return true
	}
	return r.Response.Status == "error"
}

// ResultObject decodes Result into v when it holds a JSON object.
func (p *Payload) ResultObject(v any) bool {
	if p == nil || len(p.Result) == 0 {
		return false
	}
	trimmed := bytes.TrimSpace(p.Result)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Unmarshal(trimmed, v) == nil
}

// ResultString returns Result when it holds a bare JSON string.
func (p *Payload) ResultString() (string, bool) {
	if p == nil || len(p.Result) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(p.Result, &s); err != nil {
		return "", false
	}
	return s, true
}

// ResultPretty renders the raw result as indented JSON for display
// when no message field is available.
func (p *Payload) ResultPretty() (string, bool) {
	if p == nil || len(p.Result) == 0 {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, p.Result, "", "  "); err != nil {
		return string(p.Result), true
	}
	return buf.String(), true
}
