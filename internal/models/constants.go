package models

// Prescreen is the most recent intake record for a user, stored alongside
// the document index and consulted during diagnosis validation.
type Prescreen struct {
	UserID     string            `json:"user_id"`
	Symptoms   []string          `json:"symptoms"`
	Duration   string            `json:"duration"`
	Severity   string            `json:"severity"`
	History    map[string]any    `json:"medical_history"`
	VitalSigns map[string]string `json:"vital_signs"`
	RecordedAt string            `json:"recorded_at"`
}

// ValidationResponse is the structured result of validating a doctor's
// diagnosis against prescreen data and the document index.
type ValidationResponse struct {
	ValidationResult map[string]any `json:"validation_result"`
	Suggestions      []string       `json:"suggestions"`
	RiskLevel        string         `json:"risk_level"`
	ConfidenceScore  float64        `json:"confidence_score"`
}

var ValidationSystemPrompt = `You are an advanced medical diagnosis validation assistant. Your role is to:

1. Analyze the consistency between reported symptoms and proposed diagnoses
2. Identify potential discrepancies or missing information
3. Flag any concerning combinations of symptoms and conditions
4. Consider the patient's medical history and risk factors
5. Provide evidence-based reasoning for all suggestions
6. Maintain a balanced perspective, acknowledging both supporting and contradicting evidence

Format your response in a short, but structured manner:
- Primary Analysis
- Discrepancies/Concerns (if any)
- Supporting Evidence
- Recommendations

Present all this in a concise manner so that a doctor can easily read over it.`

var ValidationQueryTemplate = `Given the following patient information and doctor's diagnosis, analyze for consistency and potential concerns:

Patient Symptoms: %s
Symptom Duration: %s
Severity: %s
Medical History: %v
Vital Signs: %v

Doctor's Diagnosis: %s

Please analyze:
1. Consistency between symptoms and diagnosis
2. Any missing critical tests or examinations
3. Potential alternative diagnoses to consider
4. Risk factors based on medical history
5. Recommended additional specialist consultations if needed
`

// MedicalQueryTerms is used to decide whether a free-form query already
// carries medical context or needs enhancement before retrieval.
var MedicalQueryTerms = []string{
	"symptoms", "diagnosis", "treatment", "medication",
	"history", "examination", "tests", "results",
}
