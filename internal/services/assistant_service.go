package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	domain "github.com/floorhouse/site/internal/domain"
)

const (
	defaultAssistantTopK   = 5
	maxAssistantQuestion   = 1000
	assistantNameBoost     = 3
	assistantMinTokenRunes = 2
)

var (
	// ErrAssistantInvalid marks questions that are empty or too long.
	ErrAssistantInvalid = errors.New("assistant service: invalid question")
	// ErrAssistantCatalogMissing indicates the catalog dependency is absent.
	ErrAssistantCatalogMissing = errors.New("assistant service: catalog is not configured")
)

// AssistantQuestion is a chat widget question.
type AssistantQuestion struct {
	Question string `json:"question"`
	Locale   string `json:"locale"`
}

// AssistantMatch is a catalog product retrieved as context for an answer.
type AssistantMatch struct {
	SKU        string                `json:"sku"`
	Slug       string                `json:"slug"`
	Collection domain.CollectionType `json:"collection"`
	Pattern    domain.ProductPattern `json:"pattern"`
	Name       string                `json:"name"`
	Summary    string                `json:"summary"`
	Score      int                   `json:"score"`
}

// AssistantAnswer carries the answer text, if any, and the retrieved products.
type AssistantAnswer struct {
	Answer   string
	Products []AssistantMatch
}

// AnswerRequest is sent to the external answer backend.
type AnswerRequest struct {
	Question string           `json:"question"`
	Locale   string           `json:"locale"`
	Context  []AssistantMatch `json:"context"`
}

// Answerer produces answer text from a question and retrieved context.
type Answerer interface {
	Answer(ctx context.Context, req AnswerRequest) (string, error)
}

// AssistantServiceDeps bundles constructor inputs for the assistant service.
type AssistantServiceDeps struct {
	Catalog  CatalogService
	Answerer Answerer
	TopK     int
	Logger   *zap.Logger
}

type assistantService struct {
	catalog  CatalogService
	answerer Answerer
	topK     int
	logger   *zap.Logger
}

// NewAssistantService constructs the assistant. Without an Answerer it
// returns retrieved products only.
func NewAssistantService(deps AssistantServiceDeps) (AssistantService, error) {
	if deps.Catalog == nil {
		return nil, ErrAssistantCatalogMissing
	}
	topK := deps.TopK
	if topK <= 0 {
		topK = defaultAssistantTopK
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &assistantService{catalog: deps.Catalog, answerer: deps.Answerer, topK: topK, logger: logger}, nil
}

func (s *assistantService) Ask(ctx context.Context, cmd AssistantQuestion) (AssistantAnswer, error) {
	question := strings.TrimSpace(cmd.Question)
	if question == "" || utf8.RuneCountInString(question) > maxAssistantQuestion {
		return AssistantAnswer{}, ErrAssistantInvalid
	}
	locale, ok := domain.ParseLocale(cmd.Locale)
	if !ok {
		locale = domain.DefaultLocale
	}

	matches := s.retrieve(question, locale)
	s.logger.Debug("assistant retrieval", zap.String("locale", string(locale)), zap.Int("matches", len(matches)))
	answer := AssistantAnswer{Products: matches}
	if s.answerer == nil {
		return answer, nil
	}

	text, err := s.answerer.Answer(ctx, AnswerRequest{Question: question, Locale: string(locale), Context: matches})
	if err != nil {
		return AssistantAnswer{}, fmt.Errorf("assistant service: answer: %w", err)
	}
	answer.Answer = text
	return answer, nil
}

// retrieve scores every product by how many question tokens appear in its
// localized text. Name matches weigh more. Ties keep catalog order.
func (s *assistantService) retrieve(question string, locale domain.Locale) []AssistantMatch {
	terms := tokenize(question)
	if len(terms) == 0 {
		return []AssistantMatch{}
	}

	var matches []AssistantMatch
	for _, p := range s.catalog.AllProducts() {
		content, _ := p.Content(locale)
		nameTokens := tokenSet(content.Name)
		bodyTokens := tokenSet(strings.Join(append([]string{
			content.Description,
			string(p.Collection),
			string(p.Pattern),
			strings.ReplaceAll(string(p.Collection), "-", " "),
			strings.ReplaceAll(string(p.Pattern), "-", " "),
			strings.Join(content.SEO.Keywords, " "),
		}, content.Features...), " "))

		score := 0
		for _, term := range terms {
			if _, ok := nameTokens[term]; ok {
				score += assistantNameBoost
			}
			if _, ok := bodyTokens[term]; ok {
				score++
			}
		}
		if score == 0 {
			continue
		}
		matches = append(matches, AssistantMatch{
			SKU:        p.SKU,
			Slug:       p.Slug,
			Collection: p.Collection,
			Pattern:    p.Pattern,
			Name:       content.Name,
			Summary:    content.Description,
			Score:      score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > s.topK {
		matches = matches[:s.topK]
	}
	if matches == nil {
		matches = []AssistantMatch{}
	}
	return matches
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < assistantMinTokenRunes {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func tokenSet(text string) map[string]struct{} {
	tokens := tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
