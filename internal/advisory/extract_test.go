package advisory

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/medimart/health-companion/internal/agent"
)

func TestExtractStructuredResult(t *testing.T) {
	p := &agent.Payload{
		Result: json.RawMessage(`{"message":"Drink plenty of water.","risk_level":"LOW","recommendation":"MONITOR_SYMPTOMS"}`),
	}

	msg, data := Extract(p)
	if msg != "Drink plenty of water." {
		t.Errorf("message = %q", msg)
	}
	if data == nil {
		t.Fatal("expected structured payload")
	}
	if data.RiskLevel != RiskLow {
		t.Errorf("risk = %q, want %q", data.RiskLevel, RiskLow)
	}
}

func TestExtractStructuredFallsBackToTopLevelMessage(t *testing.T) {
	p := &agent.Payload{
		Result:  json.RawMessage(`{"risk_level":"LOW"}`),
		Message: "Here is my advice.",
	}

	msg, data := Extract(p)
	if msg != "Here is my advice." {
		t.Errorf("message = %q", msg)
	}
	if data == nil {
		t.Error("expected structured payload")
	}
}

func TestExtractStructuredFallsBackToPrettyDump(t *testing.T) {
	p := &agent.Payload{
		Result: json.RawMessage(`{"risk_level":"LOW"}`),
	}

	msg, _ := Extract(p)
	if !strings.Contains(msg, `"risk_level"`) {
		t.Errorf("expected pretty-printed result, got %q", msg)
	}
}

func TestExtractTopLevelMessage(t *testing.T) {
	p := &agent.Payload{Message: "Plain advice."}

	msg, data := Extract(p)
	if msg != "Plain advice." {
		t.Errorf("message = %q", msg)
	}
	if data != nil {
		t.Error("expected no structured payload")
	}
}

func TestExtractStringResult(t *testing.T) {
	p := &agent.Payload{Result: json.RawMessage(`"String advice."`)}

	msg, data := Extract(p)
	if msg != "String advice." {
		t.Errorf("message = %q", msg)
	}
	if data != nil {
		t.Error("expected no structured payload")
	}
}

func TestExtractEmptyPayload(t *testing.T) {
	tests := []struct {
		name string
		p    *agent.Payload
	}{
		{"nil payload", nil},
		{"zero payload", &agent.Payload{}},
		{"unusable result", &agent.Payload{Result: json.RawMessage(`42`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, data := Extract(tt.p)
			if msg != NeedMoreInfoMessage {
				t.Errorf("message = %q, want need-more-info text", msg)
			}
			if data != nil {
				t.Error("expected no structured payload")
			}
		})
	}
}

func TestExtractScan(t *testing.T) {
	p := &agent.Payload{
		Result: json.RawMessage(`{"medicine_name":"Paracetamol","generic_name":"Acetaminophen","uses":["Pain relief"]}`),
	}

	result, ok := ExtractScan(p)
	if !ok {
		t.Fatal("expected a scan result")
	}
	if result.MedicineName != "Paracetamol" {
		t.Errorf("medicine = %q", result.MedicineName)
	}

	if _, ok := ExtractScan(&agent.Payload{Message: "could not read label"}); ok {
		t.Error("expected no scan result without a structured payload")
	}
	if _, ok := ExtractScan(nil); ok {
		t.Error("expected no scan result for nil payload")
	}
}

func TestExtractScanAdvice(t *testing.T) {
	structured := &agent.Payload{Result: json.RawMessage(`{"risk_level":"LOW"}`)}
	msg, data := ExtractScanAdvice(structured)
	if msg != "Medicine information retrieved." {
		t.Errorf("message = %q", msg)
	}
	if data == nil {
		t.Error("expected structured payload")
	}

	msg, data = ExtractScanAdvice(&agent.Payload{Message: "Safe for you."})
	if msg != "Safe for you." || data != nil {
		t.Errorf("got (%q, %v)", msg, data)
	}

	msg, data = ExtractScanAdvice(&agent.Payload{})
	if msg != "" || data != nil {
		t.Errorf("empty payload should yield empty message, got (%q, %v)", msg, data)
	}
}
