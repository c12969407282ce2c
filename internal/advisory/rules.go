package advisory

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var rulesTracer = otel.Tracer("medimart/advisory-rules")

// symptomRule pairs a keyword predicate with a response template.
// Rules are evaluated top to bottom; the first match wins.
type symptomRule struct {
	name     string
	keywords []string
	build    func(p UserProfile, lang Language) HealthResponse
}

// fallbackRules is the ordered decision list used when the remote
// health assistant is unavailable. Keywords cover English and Hindi
// terms and are matched case-insensitively against the question.
var fallbackRules = []symptomRule{
	{
		name:     "headache",
		keywords: []string{"headache", "head", "सिरदर्द"},
		build:    headacheResponse,
	},
	{
		name:     "fever",
		keywords: []string{"fever", "temperature", "बुखार"},
		build:    feverResponse,
	},
	{
		name:     "nausea",
		keywords: []string{"nausea", "vomit", "morning sickness", "मतली"},
		build:    nauseaResponse,
	},
}

func (r symptomRule) matches(lowerQuestion string) bool {
	for _, kw := range r.keywords {
		if strings.Contains(lowerQuestion, kw) {
			return true
		}
	}
	return false
}

// Fallback generates a deterministic advisory response for a free-text
// health question. It is a pure function of (question, profile, language):
// identical inputs always produce identical output.
func Fallback(ctx context.Context, question string, p UserProfile, lang Language) HealthResponse {
	_, span := rulesTracer.Start(ctx, "advisory.fallback")
	defer span.End()

	lower := strings.ToLower(question)
	for _, rule := range fallbackRules {
		if rule.matches(lower) {
			span.SetAttributes(attribute.String("advisory.rule", rule.name))
			return rule.build(p, lang)
		}
	}

	span.SetAttributes(attribute.String("advisory.rule", "general"))
	return generalResponse(p, lang)
}

// bilingual prefixes the English body with a Hindi greeting paragraph
// when the session language is Hindi, otherwise returns the body as is.
func bilingual(lang Language, hindiIntro, english string) string {
	if lang == LanguageHindi {
		return hindiIntro + "\n\n" + english
	}
	return english
}

func languageUsed(lang Language) string {
	if lang == LanguageHindi {
		return LanguageUsedBilingual
	}
	return LanguageUsedEnglish
}

func headacheResponse(p UserProfile, lang Language) HealthResponse {
	if p.Pregnant() {
		english := fmt.Sprintf("Hello %s! Headaches during pregnancy are common. Here's what you can do safely:\n\n"+
			"• Rest in a quiet, dark room\n"+
			"• Apply a cold compress to your forehead\n"+
			"• Stay well hydrated (drink 8-10 glasses of water daily)\n"+
			"• Practice gentle neck stretches\n"+
			"• Ensure regular meals to maintain blood sugar\n\n"+
			"Avoid taking any medication without consulting your doctor during pregnancy.", p.Name)
		return HealthResponse{
			Message:        bilingual(lang, fmt.Sprintf("नमस्ते %s! गर्भावस्था के दौरान सिरदर्द आम है।", p.Name), english),
			RiskLevel:      RiskLow,
			PregnancyAlert: true,
			Recommendation: RecommendMonitorConsult,
			LanguageUsed:   languageUsed(lang),
			SafeHomeRemedies: []string{
				"Rest in a dark room",
				"Cold compress on forehead",
				"Stay hydrated",
				"Gentle stretching",
			},
			WarningSigns: []string{
				"Severe headache with vision changes",
				"Headache with high fever",
				"Sudden severe headache",
				"Headache with swelling in hands/face",
			},
		}
	}

	english := fmt.Sprintf("Hello %s! For your headache:\n\n"+
		"• Rest in a quiet, dark room\n"+
		"• Stay hydrated - drink plenty of water\n"+
		"• Apply cold compress to forehead\n"+
		"• Practice relaxation techniques\n"+
		"• Avoid screen time for a while\n"+
		"• Ensure you're getting adequate sleep\n\n"+
		"If headache persists for more than 2 days or becomes severe, please consult a doctor.", p.Name)
	return HealthResponse{
		Message:        bilingual(lang, fmt.Sprintf("नमस्ते %s! सिरदर्द के लिए सुझाव:", p.Name), english),
		RiskLevel:      RiskLow,
		Recommendation: RecommendMonitor,
		LanguageUsed:   languageUsed(lang),
		SafeHomeRemedies: []string{
			"Rest in dark room",
			"Drink water",
			"Cold compress",
			"Relaxation techniques",
		},
		WarningSigns: []string{
			"Severe sudden headache",
			"Headache with fever",
			"Vision changes",
			"Confusion or difficulty speaking",
		},
	}
}

func feverResponse(p UserProfile, lang Language) HealthResponse {
	pregnant := p.Pregnant()

	tail := "Consult a doctor if fever exceeds 102°F (39°C) or persists for more than 3 days."
	if pregnant {
		tail = "IMPORTANT: Do not take any fever medication without consulting your doctor during pregnancy.\n\n" +
			"Consult your doctor if fever exceeds 100.4°F (38°C)."
	}
	english := fmt.Sprintf("Hello %s! For fever:\n\n"+
		"• Rest adequately\n"+
		"• Drink plenty of fluids (water, coconut water, soup)\n"+
		"• Wear light, breathable clothing\n"+
		"• Use lukewarm water sponging\n"+
		"• Monitor temperature every 4 hours\n\n%s", p.Name, tail)

	risk := RiskLow
	if pregnant {
		risk = RiskModerate
	}
	warningSigns := []string{
		"Fever above 103°F",
		"Difficulty breathing",
		"Severe headache",
		"Rash",
		"Persistent vomiting",
	}
	if pregnant {
		warningSigns = []string{
			"Fever above 100.4°F",
			"Severe abdominal pain",
			"Reduced fetal movement",
			"Severe headache",
		}
	}

	return HealthResponse{
		Message:        bilingual(lang, fmt.Sprintf("नमस्ते %s! बुखार के लिए सुझाव:", p.Name), english),
		RiskLevel:      risk,
		PregnancyAlert: pregnant,
		Recommendation: RecommendConsultDoctor,
		LanguageUsed:   languageUsed(lang),
		SafeHomeRemedies: []string{
			"Rest",
			"Drink fluids",
			"Lukewarm sponging",
			"Light clothing",
			"Monitor temperature",
		},
		WarningSigns: warningSigns,
	}
}

func nauseaResponse(p UserProfile, lang Language) HealthResponse {
	if p.Pregnant() {
		english := fmt.Sprintf("Hello %s! Morning sickness is common in pregnancy:\n\n"+
			"• Eat small, frequent meals (every 2-3 hours)\n"+
			"• Keep crackers or dry toast by your bedside\n"+
			"• Eat them before getting out of bed\n"+
			"• Avoid spicy, fatty, or strong-smelling foods\n"+
			"• Ginger tea or ginger candies can help\n"+
			"• Stay hydrated with small sips of water\n"+
			"• Get fresh air and rest adequately\n\n"+
			"These symptoms usually improve after the first trimester.", p.Name)
		return HealthResponse{
			Message:        bilingual(lang, fmt.Sprintf("नमस्ते %s! मॉर्निंग सिकनेस गर्भावस्था में सामान्य है।", p.Name), english),
			RiskLevel:      RiskLow,
			PregnancyAlert: true,
			Recommendation: RecommendMonitorConsult,
			LanguageUsed:   languageUsed(lang),
			SafeHomeRemedies: []string{
				"Small frequent meals",
				"Dry crackers/toast",
				"Ginger tea",
				"Fresh air",
				"Avoid triggers",
			},
			WarningSigns: []string{
				"Unable to keep any food/water down",
				"Weight loss",
				"Dark urine",
				"Dizziness",
				"Severe dehydration",
			},
		}
	}

	// The non-pregnant nausea advice ships in English only.
	message := fmt.Sprintf("Hello %s! For nausea:\n\n"+
		"• Eat bland foods (crackers, toast, rice)\n"+
		"• Avoid greasy or spicy foods\n"+
		"• Drink clear fluids\n"+
		"• Ginger or peppermint tea\n"+
		"• Rest and fresh air\n\n"+
		"Consult a doctor if nausea persists or is accompanied by severe symptoms.", p.Name)
	return HealthResponse{
		Message:        message,
		RiskLevel:      RiskLow,
		Recommendation: RecommendMonitor,
		LanguageUsed:   languageUsed(lang),
		SafeHomeRemedies: []string{
			"Bland foods",
			"Clear fluids",
			"Ginger tea",
			"Rest",
			"Fresh air",
		},
		WarningSigns: []string{
			"Severe vomiting",
			"Blood in vomit",
			"Dehydration signs",
			"Severe abdominal pain",
		},
	}
}

func generalResponse(p UserProfile, lang Language) HealthResponse {
	pregnant := p.Pregnant()

	profileLine := "I will provide personalized health guidance based on your profile."
	topicLine := "General wellness"
	if pregnant {
		profileLine = "As you are pregnant, I will provide pregnancy-safe recommendations."
		topicLine = "Pregnancy-related concerns"
	}
	english := fmt.Sprintf("Hello %s! I'm here to help you with your health questions.\n\n"+
		"For the best personalized advice, please:\n"+
		"• Describe your symptoms clearly\n"+
		"• Mention when they started\n"+
		"• Let me know if you have any other concerns\n\n%s\n\n"+
		"Common topics I can help with:\n"+
		"• Headaches and pain management\n"+
		"• Fever and common cold\n"+
		"• %s\n"+
		"• Medicine safety information\n"+
		"• When to consult a doctor", p.Name, profileLine, topicLine)

	return HealthResponse{
		Message:        bilingual(lang, fmt.Sprintf("नमस्ते %s! मैं आपकी मदद करने के लिए यहां हूं।", p.Name), english),
		RiskLevel:      RiskLow,
		Recommendation: RecommendAskSpecific,
		LanguageUsed:   languageUsed(lang),
		SafeHomeRemedies: []string{
			"Describe symptoms clearly",
			"Ask specific questions",
			"Share relevant details",
		},
		WarningSigns: []string{
			"Severe pain",
			"High fever",
			"Difficulty breathing",
			"Chest pain",
			"Severe bleeding",
		},
	}
}
