// Package extractor assigns issue categories and business-aspect
// confidence scores to conversations using keyword and pattern matching
// over customer-authored text.
package extractor

import (
	"math"
	"regexp"
	"strings"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
)

// CategoryRule describes one category's lexicon. Keywords are matched on
// word boundaries and score 2 points per hit; patterns are regular
// expressions scoring 3 points per hit.
type CategoryRule struct {
	Keywords []string `mapstructure:"keywords"`
	Patterns []string `mapstructure:"patterns"`
}

// Extraction is the extractor's output for one conversation.
type Extraction struct {
	// IssueCategory is the single best-matching category, or empty when
	// no category reached the minimum score.
	IssueCategory string
	// Aspects maps business aspect names to confidence scores in [0,1].
	Aspects map[string]float64
}

// Extractor scores conversations against two rule sets: generic issue
// categories and business-domain aspects.
type Extractor struct {
	categories map[string]compiledRule
	aspects    map[string]compiledRule
}

type compiledRule struct {
	keywords []*regexp.Regexp
	patterns []*regexp.Regexp
}

// minCategoryScore filters out incidental single-keyword matches.
const minCategoryScore = 2

// New compiles the given rule sets. Invalid patterns are skipped rather
// than failing the whole extractor, since rules are operator-editable
// configuration.
func New(categories, aspects map[string]CategoryRule) *Extractor {
	return &Extractor{
		categories: compileRules(categories),
		aspects:    compileRules(aspects),
	}
}

// NewDefault builds an extractor with the built-in rule sets.
func NewDefault() *Extractor {
	return New(DefaultCategories(), DefaultAspects())
}

func compileRules(rules map[string]CategoryRule) map[string]compiledRule {
	out := make(map[string]compiledRule, len(rules))
	for name, rule := range rules {
		var c compiledRule
		for _, kw := range rule.Keywords {
			re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(kw)) + `\b`)
			if err != nil {
				continue
			}
			c.keywords = append(c.keywords, re)
		}
		for _, p := range rule.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				continue
			}
			c.patterns = append(c.patterns, re)
		}
		out[name] = c
	}
	return out
}

// Extract scores the conversation's customer text against both rule
// sets. When includeAll is true, agent-authored messages are scored too.
func (e *Extractor) Extract(conv models.Conversation, includeAll bool) Extraction {
	text := CombinedText(conv, includeAll)
	if text == "" {
		return Extraction{}
	}

	return Extraction{
		IssueCategory: e.bestCategory(text),
		Aspects:       e.aspectConfidences(text),
	}
}

func (e *Extractor) bestCategory(text string) string {
	best := ""
	bestScore := 0
	for name, rule := range e.categories {
		score := rule.score(text)
		if score > bestScore || (score == bestScore && score > 0 && name < best) {
			best = name
			bestScore = score
		}
	}
	if bestScore < minCategoryScore {
		return ""
	}
	return best
}

func (e *Extractor) aspectConfidences(text string) map[string]float64 {
	out := make(map[string]float64)
	for name, rule := range e.aspects {
		score := rule.score(text)
		if score == 0 {
			continue
		}
		// Normalize raw hit score to a confidence: s/(s+10), capped.
		conf := float64(score) / (float64(score) + 10)
		if conf > 0.95 {
			conf = 0.95
		}
		out[name] = round4(conf)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (r compiledRule) score(text string) int {
	score := 0
	for _, re := range r.keywords {
		score += len(re.FindAllStringIndex(text, -1)) * 2
	}
	for _, re := range r.patterns {
		score += len(re.FindAllStringIndex(text, -1)) * 3
	}
	return score
}

// CombinedText lowercases and joins the conversation's relevant message
// texts. When includeAll is false, only customer-authored messages are
// used.
func CombinedText(conv models.Conversation, includeAll bool) string {
	var parts []string
	for _, msg := range conv.Messages {
		if msg.Text == "" {
			continue
		}
		if !includeAll && msg.AuthorRole != models.AuthorRoleCustomer {
			continue
		}
		parts = append(parts, strings.ToLower(msg.Text))
	}
	return strings.Join(parts, " ")
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
