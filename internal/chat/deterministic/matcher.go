package deterministic

import (
	"strings"

	"github.com/kineticchat/webui/internal/platform/cache"
)

// Trigger phrases are shared across profiles; only the response text and the
// retrieval gate keywords vary. All phrases are pre-normalized.
var (
	locationPhrases = []string{
		"where are you", "where is", "location", "address", "find",
		"nearest", "near me", "office near", "store near",
		"donde esta", "donde queda", "ubicacion", "direccion",
		"mas cercana", "encontrar",
	}
	greetingPhrases = []string{
		"hello", "hi", "hey", "good morning", "good afternoon",
		"hola", "buenos dias", "buenas tardes",
	}
	hoursPhrases = []string{
		"hours", "when open", "when close", "opening time", "closing time",
		"horario", "cuando abren", "cuando cierran", "hora de apertura",
	}
	phonePhrases = []string{
		"phone", "call", "telephone", "contact number",
		"telefono", "llamar", "numero de contacto",
	}
	insurancePhrases = []string{
		"insurance", "medicare", "medicaid", "coverage", "copay",
		"seguro", "cobertura", "copago",
	}
	servicesPhrases = []string{
		"what can you help", "what services", "what can you", "what do you offer",
		"how can you help", "how can you assist", "what can i ask", "what topics",
		"what information",
		"que servicios", "que ofrece", "como puede ayudar", "que puede hacer",
	}
	// Narrow on purpose: a bare "help" must not shadow capability questions
	// like "what can you help with", which belong to the services intent.
	helpPhrases = []string{
		"i need help with", "help me with", "can you assist",
		"necesito ayuda con", "ayudame con",
	}
)

// questionPatterns route open-ended questions to retrieval regardless of
// profile. Domain keywords from the response set extend this list.
var questionPatterns = []string{
	"how does", "how do", "explain", "tell me about", "what is",
	"como funciona", "explicar", "que es",
}

const (
	greetingThreshold = 0.7
	helpThreshold     = 0.85
	memoCapacity      = 128
)

type memoEntry struct {
	response string
	matched  bool
}

// Matcher resolves queries against static intent tables. Lookup is a pure
// function of (query, language); results are memoized in a bounded cache,
// so a Matcher is safe for concurrent use.
type Matcher struct {
	responses    ResponseSet
	gateKeywords []string
	memo         *cache.LRU[string, memoEntry]
}

// NewMatcher builds a matcher answering from the given response set.
func NewMatcher(responses ResponseSet) *Matcher {
	gate := make([]string, 0, len(responses.DomainKeywords)+len(questionPatterns))
	gate = append(gate, responses.DomainKeywords...)
	gate = append(gate, questionPatterns...)
	return &Matcher{
		responses:    responses,
		gateKeywords: gate,
		memo:         cache.NewLRU[string, memoEntry](memoCapacity),
	}
}

// Lookup returns the canned response for a query, or matched=false when the
// query needs retrieval. Evaluation order is fixed: the location intent is
// checked before the retrieval gate, so "where can I find vaccine
// information" gets the location answer even though it names a domain term.
func (m *Matcher) Lookup(query, language string) (response string, matched bool) {
	key := language + "\x00" + query
	entry := m.memo.GetOrPut(key, func() memoEntry {
		return m.lookup(query, language)
	})
	return entry.response, entry.matched
}

func (m *Matcher) lookup(query, language string) memoEntry {
	normalized := Normalize(query)

	for _, phrase := range locationPhrases {
		if Matches(normalized, phrase, DefaultThreshold) {
			return memoEntry{m.respond(IntentLocation, language), true}
		}
	}

	if m.RequiresRAG(query) {
		return memoEntry{}
	}

	checks := []struct {
		intent    Intent
		phrases   []string
		threshold float64
	}{
		{IntentGreeting, greetingPhrases, greetingThreshold},
		{IntentHours, hoursPhrases, DefaultThreshold},
		{IntentPhone, phonePhrases, DefaultThreshold},
		{IntentInsurance, insurancePhrases, DefaultThreshold},
		{IntentServices, servicesPhrases, DefaultThreshold},
		{IntentHelp, helpPhrases, helpThreshold},
	}
	for _, c := range checks {
		for _, phrase := range c.phrases {
			if Matches(normalized, phrase, c.threshold) {
				return memoEntry{m.respond(c.intent, language), true}
			}
		}
	}

	return memoEntry{}
}

// RequiresRAG reports whether the query names a domain topic or an
// open-ended question pattern that needs the knowledge base. Operates on
// the raw lowercased query, not the normalized form.
func (m *Matcher) RequiresRAG(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range m.gateKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (m *Matcher) respond(intent Intent, language string) string {
	return m.responses.Intents[intent].For(language)
}
