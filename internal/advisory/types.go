package advisory

// RiskLevel grades how urgently a symptom should be acted on.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

// Language is the user's selected response language.
type Language string

const (
	LanguageHindi   Language = "hindi"
	LanguageEnglish Language = "english"
	LanguageUnset   Language = ""
)

// Language tags reported back on every generated response.
const (
	LanguageUsedBilingual = "BILINGUAL_HINDI_ENGLISH"
	LanguageUsedEnglish   = "ENGLISH"
)

// Recommendation tags attached to generated responses.
const (
	RecommendMonitor         = "MONITOR_SYMPTOMS"
	RecommendMonitorConsult  = "MONITOR_AND_CONSULT_IF_SEVERE"
	RecommendConsultDoctor   = "CONSULT_DOCTOR_IF_PERSISTENT"
	RecommendAskSpecific     = "ASK_SPECIFIC_QUESTION"
)

// UserProfile is the health profile collected on first login.
// Age is kept as entered; it is never parsed for decisions.
type UserProfile struct {
	Name       string `json:"name"`
	Age        string `json:"age"`
	IsPregnant string `json:"isPregnant"` // "yes", "no", or ""
	Allergies  string `json:"allergies"`
	Conditions string `json:"conditions"`
}

// Complete reports whether the profile can leave the login screen.
// Allergies and conditions are optional.
func (p UserProfile) Complete() bool {
	return p.Name != "" && p.Age != "" && p.IsPregnant != ""
}

// Pregnant reports whether the profile declares an active pregnancy.
func (p UserProfile) Pregnant() bool {
	return p.IsPregnant == "yes"
}

// HealthResponse is the structured advisory payload attached to
// assistant messages. Immutable once produced.
type HealthResponse struct {
	Message          string    `json:"message"`
	RiskLevel        RiskLevel `json:"risk_level"`
	PregnancyAlert   bool      `json:"pregnancy_alert"`
	Recommendation   string    `json:"recommendation"`
	LanguageUsed     string    `json:"language_used"`
	SafeHomeRemedies []string  `json:"safe_home_remedies"`
	WarningSigns     []string  `json:"warning_signs"`
}

// ScanResult is what the medicine scanner agent extracts from an image.
// At most one live instance exists per session; a new scan clears it.
type ScanResult struct {
	MedicineName      string   `json:"medicine_name"`
	GenericName       string   `json:"generic_name"`
	Category          string   `json:"category"`
	Uses              []string `json:"uses"`
	PregnancyWarning  string   `json:"pregnancy_warning"`
	SideEffects       []string `json:"side_effects"`
	Contraindications []string `json:"contraindications"`
	DosageNote        string   `json:"dosage_note"`
}
