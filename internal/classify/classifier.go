// Package classify turns collected candidate items into classification
// results through a three-stage fallback cascade: AI model, keyword rule
// engine, conservative default.
package classify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/argussky/argus/internal/category"
	"github.com/argussky/argus/internal/threat"
)

// AIBackend is implemented by model-based classifiers. Classify returns an
// error for any transport, quota, or parse failure; the cascade never
// surfaces these to callers.
type AIBackend interface {
	Name() string
	Classify(ctx context.Context, content, source string) (*threat.Classification, error)
}

// Classifier runs the fallback cascade. The zero backend (nil) is valid and
// degrades every item to the keyword engine.
type Classifier struct {
	backend AIBackend
	logger  *zap.Logger
}

// NewClassifier creates a cascade classifier. backend may be nil.
func NewClassifier(backend AIBackend, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		backend: backend,
		logger:  logger,
	}
}

// Classify produces a classification for one candidate item. It never
// returns an error: every failure mode degrades to a lower cascade stage,
// ending at the conservative default.
func (c *Classifier) Classify(ctx context.Context, item threat.CandidateItem) threat.Classification {
	text := strings.TrimSpace(item.Text())
	if text == "" {
		return c.defaultResult(item, "empty content")
	}

	matches := MatchKeywords(text)

	// No keyword signal at all: not worth a model call. The item is treated
	// as a non-threat unless a collector pre-assigned a category hint.
	if len(matches) == 0 && !category.Valid(item.CategoryHint) {
		return threat.Classification{
			IsThreat: false,
			Method:   threat.MethodKeyword,
		}
	}

	if c.backend != nil {
		result, err := c.backend.Classify(ctx, text, item.Source)
		if err == nil {
			return c.validateAI(*result, matches, item)
		}
		c.logger.Warn("ai classification failed, falling back to keywords",
			zap.String("backend", c.backend.Name()),
			zap.String("source", item.Source),
			zap.Error(err))
	}

	return c.keywordResult(matches, item)
}

// validateAI sanitizes a model verdict. A missing category falls back to the
// keyword winner; if that is empty too, the default result is used.
func (c *Classifier) validateAI(result threat.Classification, matches map[category.ID]KeywordMatch, item threat.CandidateItem) threat.Classification {
	result.Method = threat.MethodAI
	result.Severity = threat.ClampSeverity(result.Severity)
	result.Confidence = threat.ClampConfidence(result.Confidence)

	if result.IsThreat && !category.Valid(result.Category) {
		topID, topHit := topMatch(matches, item.CategoryHint)
		if topID == "" {
			return c.defaultResult(item, "model verdict missing category")
		}
		result.Category = topID
		if len(result.Keywords) == 0 {
			result.Keywords = topHit.Keywords
		}
	}
	if !result.IsThreat {
		result.Category = ""
	}

	return result
}

// keywordResult builds a classification from keyword hits alone.
func (c *Classifier) keywordResult(matches map[category.ID]KeywordMatch, item threat.CandidateItem) threat.Classification {
	topID, topHit := topMatch(matches, item.CategoryHint)
	if topID == "" {
		return c.defaultResult(item, "no keyword matches")
	}

	base := topHit.BaseScore
	if base == 0 {
		// Hint-only path: the collector asserted a category but the text has
		// no configured keywords. Score it at the floor of the rule engine.
		base = keywordBase
	}

	confidence := float64(base) / 100
	if confidence > keywordMaxConf {
		confidence = keywordMaxConf
	}

	info, _ := category.Lookup(topID)
	return threat.Classification{
		IsThreat:   base >= keywordThreshold,
		Category:   topID,
		Severity:   base,
		Confidence: confidence,
		Summary:    summaryFor(info, item),
		Keywords:   topHit.Keywords,
		Method:     threat.MethodKeyword,
	}
}

// defaultResult is the last cascade stage: the item is not treated as a
// threat.
func (c *Classifier) defaultResult(item threat.CandidateItem, reason string) threat.Classification {
	c.logger.Debug("default classification applied",
		zap.String("source", item.Source),
		zap.String("reason", reason))

	return threat.Classification{
		IsThreat: false,
		Method:   threat.MethodDefault,
	}
}

func summaryFor(info category.Info, item threat.CandidateItem) string {
	if item.Title != "" {
		return item.Title
	}
	return info.Description
}
