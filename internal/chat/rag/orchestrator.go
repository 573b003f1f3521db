package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kineticchat/webui/internal/platform/cache"
	"github.com/kineticchat/webui/internal/platform/llm"
	"github.com/kineticchat/webui/internal/platform/phi"
	"github.com/kineticchat/webui/internal/platform/vectorstore"
)

const (
	// embedCacheCapacity bounds the query embedding memo.
	embedCacheCapacity = 1000

	// excerptLimit truncates document content in the prompt.
	excerptLimit = 300

	// maxSources caps the sources appended to an answer.
	maxSources = 3

	// maxVariants caps query expansion.
	maxVariants = 2

	// expansionMinWords skips synonym expansion for short queries.
	expansionMinWords = 5
)

// Turn is one prior exchange in the conversation, newest last.
type Turn struct {
	Role    string // user, assistant
	Content string
}

// Document is one retrieved knowledge item, already scrubbed.
type Document struct {
	Content string
	Score   float64
	Source  string
	Title   string
	Summary string
}

// Orchestrator retrieves context for a query and streams a grounded answer.
type Orchestrator struct {
	profile   Profile
	encoder   llm.Encoder
	searcher  vectorstore.Searcher
	completer llm.Completer
	scrubber  *phi.Scrubber
	log       zerolog.Logger

	topK      int
	threshold float64

	embedCache *cache.LRU[string, []float32]
}

// NewOrchestrator wires the retrieval pipeline. encoder, searcher, and
// completer may not be nil; callers without LLM credentials should not
// construct an orchestrator at all.
func NewOrchestrator(profile Profile, encoder llm.Encoder, searcher vectorstore.Searcher, completer llm.Completer, scrubber *phi.Scrubber, log zerolog.Logger, topK int, threshold float64) *Orchestrator {
	return &Orchestrator{
		profile:    profile,
		encoder:    encoder,
		searcher:   searcher,
		completer:  completer,
		scrubber:   scrubber,
		log:        log,
		topK:       topK,
		threshold:  threshold,
		embedCache: cache.NewLRU[string, []float32](embedCacheCapacity),
	}
}

// Profile returns the active profile.
func (o *Orchestrator) Profile() Profile {
	return o.profile
}

// TranslateForEmbedding maps Spanish domain terms to English so queries
// match the English-indexed collections. Non-Spanish queries pass through.
func (o *Orchestrator) TranslateForEmbedding(query, language string) string {
	if language != "es" {
		return query
	}

	words := strings.Fields(strings.ToLower(query))
	for i, w := range words {
		trimmed := strings.Trim(w, "¿?¡!.,;:")
		if english, ok := o.profile.SpanishToEnglish[trimmed]; ok {
			words[i] = strings.Replace(w, trimmed, english, 1)
		}
	}
	return strings.Join(words, " ")
}

// ExpandQuery adds at most one synonym variant for longer queries. Short
// queries are already specific enough that expansion only adds noise.
func (o *Orchestrator) ExpandQuery(query string) []string {
	if len(strings.Fields(query)) < expansionMinWords {
		return []string{query}
	}

	variants := []string{query}
	lower := strings.ToLower(query)

	terms := make([]string, 0, len(o.profile.DomainSynonyms))
	for term := range o.profile.DomainSynonyms {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	for _, term := range terms {
		if !strings.Contains(lower, term) {
			continue
		}
		expanded := strings.Replace(lower, term, o.profile.DomainSynonyms[term][0], 1)
		if expanded != query {
			variants = append(variants, expanded)
		}
		break
	}

	if len(variants) > maxVariants {
		variants = variants[:maxVariants]
	}
	return variants
}

func (o *Orchestrator) embed(ctx context.Context, query string) ([]float32, error) {
	if vec, ok := o.embedCache.Get(query); ok {
		return vec, nil
	}
	vec, err := o.encoder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	o.embedCache.Put(query, vec)
	return vec, nil
}

// Search retrieves, deduplicates, and scrubs knowledge items for the query.
func (o *Orchestrator) Search(ctx context.Context, query, language string) ([]Document, error) {
	embeddingQuery := o.TranslateForEmbedding(query, language)
	variants := o.ExpandQuery(embeddingQuery)

	var docs []Document
	seen := make(map[string]struct{})

	for _, variant := range variants {
		vec, err := o.embed(ctx, variant)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}

		points, err := o.searcher.Search(ctx, o.profile.Collection, vec, o.topK, o.threshold)
		if err != nil {
			return nil, fmt.Errorf("vector search: %w", err)
		}

		for _, p := range points {
			text, _ := p.Payload["text"].(string)
			if text == "" {
				continue
			}
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}

			// Knowledge payloads are external input; scrub before use.
			clean, _ := o.scrubber.ScrubValue(p.Payload).(map[string]any)
			doc := Document{Score: p.Score}
			doc.Content, _ = clean["text"].(string)
			doc.Source, _ = clean["source_file"].(string)
			if meta, ok := clean["metadata"].(map[string]any); ok {
				doc.Title, _ = meta["title"].(string)
				doc.Summary, _ = meta["summary"].(string)
			}
			docs = append(docs, doc)
		}
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })
	if len(docs) > o.topK {
		docs = docs[:o.topK]
	}

	o.log.Debug().Int("documents", len(docs)).Msg("knowledge search complete")
	return docs, nil
}

// Respond retrieves context and streams a grounded answer through emit.
// Every chunk is scrubbed before it leaves the orchestrator. On failure a
// language-appropriate apology is emitted and the underlying error returned
// for logging.
func (o *Orchestrator) Respond(ctx context.Context, query, language string, history []Turn, emit func(chunk string) error) error {
	docs, err := o.Search(ctx, query, language)
	if err != nil {
		o.log.Error().Err(err).Msg("knowledge search failed")
		// Degrade to an ungrounded answer rather than failing the chat.
		docs = nil
	}

	system := buildSystemPrompt(o.profile, language)
	prompt := buildUserPrompt(o.profile, query, language, history, docs)

	streamErr := o.completer.CompleteStream(ctx, system, prompt, func(chunk string) error {
		return emit(o.scrubber.ScrubText(chunk))
	})
	if streamErr != nil {
		o.log.Error().Err(streamErr).Msg("response generation failed")
		if emitErr := emit(generationErrorMessage(language)); emitErr != nil {
			return emitErr
		}
		return streamErr
	}

	if suffix := sourcesSuffix(docs); suffix != "" {
		return emit(o.scrubber.ScrubText(suffix))
	}
	return nil
}

// generationErrorMessage is the apology shown when the LLM call fails.
func generationErrorMessage(language string) string {
	if language == "es" {
		return "Disculpe, encontré un error al generar una respuesta. Por favor, inténtelo de nuevo."
	}
	return "I apologize, but I encountered an error generating a response. Please try again."
}

// NotInitializedMessage is returned when retrieval is not configured.
func NotInitializedMessage(language string) string {
	if language == "es" {
		return "Lo siento, el servicio de chat no está completamente inicializado. Por favor, inténtelo de nuevo en un momento."
	}
	return "I'm sorry, the chat service is not fully initialized. Please try again in a moment."
}
