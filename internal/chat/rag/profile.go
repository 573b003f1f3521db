// Package rag retrieves grounded context from a vector store and drives
// the LLM to produce sourced answers.
package rag

import (
	"fmt"
)

// Profile binds a chat deployment to a knowledge collection. Profiles are
// hot-swappable via configuration; finance and pharmacy are shipped.
type Profile struct {
	Name           string
	Collection     string
	Company        string
	QuickTopics    []string
	DomainSynonyms map[string][]string

	// SpanishToEnglish maps Spanish domain terms to English before
	// embedding; the knowledge collections are indexed in English.
	SpanishToEnglish map[string]string

	// DisclaimerTerms trigger the profile's disclaimer requirement when
	// present in a query.
	DisclaimerTerms []string
	Disclaimer      string
}

var profiles = map[string]Profile{
	"finance": {
		Name:        "finance",
		Collection:  "kinetic_corpay_finance_rag",
		Company:     "Corpay Financial Services",
		QuickTopics: []string{"Payments", "Cards", "Solutions", "Resources"},
		DomainSynonyms: map[string][]string{
			"payments":     {"payment processing", "transaction processing", "money transfer", "payment solutions"},
			"cards":        {"corporate cards", "business cards", "virtual cards", "commercial cards"},
			"fx":           {"foreign exchange", "currency exchange", "hedging", "currency risk"},
			"cross_border": {"international payments", "global payments", "border payments", "international transfer"},
		},
		SpanishToEnglish: map[string]string{
			"pago":          "payment",
			"pagos":         "payments",
			"tarjeta":       "card",
			"tarjetas":      "cards",
			"factura":       "invoice",
			"facturas":      "invoices",
			"divisas":       "foreign exchange",
			"moneda":        "currency",
			"transferencia": "transfer",
			"cuenta":        "account",
			"gastos":        "expenses",
			"combustible":   "fuel",
			"servicio":      "service",
			"servicios":     "services",
			"horario":       "hours",
		},
		DisclaimerTerms: []string{
			"invest", "investment", "loan", "credit", "interest rate",
			"exchange rate", "hedging", "tax", "financial advice",
		},
		Disclaimer: "This information is for general guidance only and is not financial advice. Please consult your account representative for decisions specific to your business.",
	},
	"pharmacy": {
		Name:        "pharmacy",
		Collection:  "kinetic_KineticAgent_Pharma_Demo",
		Company:     "YourPharmacy Health",
		QuickTopics: []string{"Vaccinations", "Medications", "Services", "Locations"},
		DomainSynonyms: map[string][]string{
			"vaccines":   {"vaccination", "immunization", "shots", "immunize", "vaccinate"},
			"medication": {"medicine", "drugs", "prescription", "pills", "treatment", "therapy"},
			"pharmacy":   {"pharmacist", "prescription services", "drug store", "medication management"},
			"testing":    {"screening", "examination", "checkup", "diagnosis", "assessment"},
		},
		SpanishToEnglish: map[string]string{
			"vacuna":       "vaccine",
			"vacunas":      "vaccines",
			"vacunación":   "vaccination",
			"inmunización": "immunization",
			"inyección":    "shot",
			"gripe":        "flu",
			"examen":       "exam",
			"exámenes":     "exams",
			"prueba":       "test",
			"pruebas":      "tests",
			"análisis":     "screening",
			"chequeo":      "checkup",
			"medicamento":  "medication",
			"medicamentos": "medications",
			"medicina":     "medicine",
			"receta":       "prescription",
			"farmacia":     "pharmacy",
			"pastilla":     "pill",
			"pastillas":    "pills",
			"salud":        "health",
			"bienestar":    "wellness",
			"nutrición":    "nutrition",
			"dieta":        "diet",
			"servicio":     "service",
			"servicios":    "services",
			"clínica":      "clinic",
			"doctor":       "doctor",
			"médico":       "physician",
			"cita":         "appointment",
			"horario":      "hours",
		},
		DisclaimerTerms: []string{
			"medical", "health", "symptom", "condition", "disease", "medication",
			"treatment", "diagnosis", "prescription", "dosage", "side effect",
			"vaccine", "vaccination", "clinical", "therapy", "screening", "testing",
		},
		Disclaimer: "This information is for educational purposes only. Please consult with a healthcare provider for personalized medical guidance.",
	},
}

// ProfileFor returns the named profile.
func ProfileFor(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("rag: unknown profile %q", name)
	}
	return p, nil
}
