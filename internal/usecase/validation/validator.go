// Package validation checks generated answers before they reach the caller.
package validation

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/domain"
	"github.com/kailas-cloud/ragate/internal/logger"
	"github.com/kailas-cloud/ragate/internal/metrics"
)

// FallbackResponse replaces answers in which the model admits it lacks the information.
const FallbackResponse = "I don't have sufficient information in the knowledge base to answer this question accurately."

// minLengthForVocabularyCheck is the answer length above which commercial vocabulary is expected.
const minLengthForVocabularyCheck = 100

var dontKnowPhrases = []string{"i don't have", "cannot find", "don't know"}

var commercialTerms = []string{
	"sales", "revenue", "performance", "agent", "target", "quota",
	"commission", "pipeline", "conversion", "roi", "margin", "profit",
}

var (
	hallucinationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\d{1,2}:\d{2}\s*(am|pm)`),
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
		regexp.MustCompile(`(?i)exactly\s+\d+`),
		regexp.MustCompile(`(?i)precisely\s+\d+`),
	}
	attributionMarker = regexp.MustCompile(`(?i)(source|according to|based on)`)
)

// Validator applies the output checks in a fixed order.
type Validator struct {
	logger *zap.Logger
}

// New creates a Validator. logger is used when the context carries none.
func New(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate returns the answer, the fallback sentence, or an output-quality error.
//
//  1. blank                                    -> ErrEmptyResponse
//  2. contains a "don't know" phrase           -> FallbackResponse
//  3. long and without commercial vocabulary   -> warning only
//  4. specific claim and no attribution marker -> ErrHallucinationSuspected
func (v *Validator) Validate(ctx context.Context, answer string) (string, error) {
	log := logger.FromContextOr(ctx, v.logger)

	if strings.TrimSpace(answer) == "" {
		return "", domain.ErrEmptyResponse
	}

	lower := strings.ToLower(answer)
	if containsAny(lower, dontKnowPhrases) {
		return FallbackResponse, nil
	}

	if utf8.RuneCountInString(answer) > minLengthForVocabularyCheck && !containsAny(lower, commercialTerms) {
		metrics.ValidationWarningsTotal.WithLabelValues("missing_commercial_terms").Inc()
		log.Warn("response may not be commercially relevant", zap.Int("length", len(answer)))
	}

	if pattern := matchedHallucination(answer); pattern != "" && !attributionMarker.MatchString(answer) {
		metrics.ValidationWarningsTotal.WithLabelValues("hallucination").Inc()
		log.Warn("potential hallucination detected", zap.String("pattern", pattern))
		return "", domain.ErrHallucinationSuspected
	}

	return answer, nil
}

func matchedHallucination(s string) string {
	for _, re := range hallucinationPatterns {
		if re.MatchString(s) {
			return re.String()
		}
	}
	return ""
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
