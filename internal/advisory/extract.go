package advisory

import (
	"github.com/medimart/health-companion/internal/agent"
)

// NeedMoreInfoMessage is shown when a successful agent call carries
// neither a result nor a message.
const NeedMoreInfoMessage = "I received your question. However, I need more information to provide a proper response."

// extractor attempts to pull a display message (and optionally a
// structured payload) out of an agent payload. Extractors run in
// priority order and short-circuit on the first success.
type extractor func(p *agent.Payload) (string, *HealthResponse, bool)

var extractors = []extractor{
	extractStructured,
	extractTopLevelMessage,
	extractStringResult,
}

// Extract resolves an agent payload into a display message and, when
// the agent returned a structured result, the advisory payload.
// Callers must have already ruled the invocation available.
func Extract(p *agent.Payload) (string, *HealthResponse) {
	for _, ex := range extractors {
		if msg, data, ok := ex(p); ok {
			return msg, data
		}
	}
	return NeedMoreInfoMessage, nil
}

// extractStructured handles an object-typed result. The message falls
// back from the structured message to the top-level message to a
// pretty-printed dump of the raw result, in that order.
func extractStructured(p *agent.Payload) (string, *HealthResponse, bool) {
	var data HealthResponse
	if !p.ResultObject(&data) {
		return "", nil, false
	}
	msg := data.Message
	if msg == "" {
		msg = p.Message
	}
	if msg == "" {
		msg, _ = p.ResultPretty()
	}
	return msg, &data, true
}

func extractTopLevelMessage(p *agent.Payload) (string, *HealthResponse, bool) {
	if p == nil || p.Message == "" {
		return "", nil, false
	}
	return p.Message, nil, true
}

func extractStringResult(p *agent.Payload) (string, *HealthResponse, bool) {
	s, ok := p.ResultString()
	if !ok || s == "" {
		return "", nil, false
	}
	return s, nil, true
}

// ExtractScan decodes an object-typed scanner result. ok is false when
// the payload holds no structured result at all.
func ExtractScan(p *agent.Payload) (ScanResult, bool) {
	var result ScanResult
	if !p.ResultObject(&result) {
		return ScanResult{}, false
	}
	return result, true
}

// ExtractScanAdvice resolves the health assessment that follows a
// successful scan. It mirrors Extract except for the terminal cases:
// a structured result with no message text reads "Medicine information
// retrieved." instead of a raw dump, and an entirely empty payload
// yields an empty message rather than the need-more-info text.
func ExtractScanAdvice(p *agent.Payload) (string, *HealthResponse) {
	var data HealthResponse
	if p.ResultObject(&data) {
		msg := data.Message
		if msg == "" {
			msg = p.Message
		}
		if msg == "" {
			msg = "Medicine information retrieved."
		}
		return msg, &data
	}
	if p != nil && p.Message != "" {
		return p.Message, nil
	}
	if s, ok := p.ResultString(); ok {
		return s, nil
	}
	return "", nil
}
