package classify

import (
	"strings"

	"github.com/argussky/argus/internal/category"
)

// keywordBase and keywordStep define the hit-derived base score
// min(100, hits*15+20) used by the rule engine.
const (
	keywordBase      = 20
	keywordStep      = 15
	keywordThreshold = 30
	keywordMaxConf   = 0.8
)

// KeywordMatch summarizes keyword hits for one category.
type KeywordMatch struct {
	Category  category.ID
	Hits      int
	Keywords  []string
	BaseScore int
}

// MatchKeywords counts configured keyword hits per category in the
// lower-cased text. Categories without hits are omitted.
func MatchKeywords(text string) map[category.ID]KeywordMatch {
	lower := strings.ToLower(text)
	results := make(map[category.ID]KeywordMatch)

	for _, info := range category.All() {
		var hit KeywordMatch
		hit.Category = info.ID
		for _, kw := range info.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				hit.Hits++
				hit.Keywords = append(hit.Keywords, kw)
			}
		}
		if hit.Hits == 0 {
			continue
		}
		hit.BaseScore = hit.Hits*keywordStep + keywordBase
		if hit.BaseScore > 100 {
			hit.BaseScore = 100
		}
		results[info.ID] = hit
	}

	return results
}

// topMatch picks the category with the highest base score. A valid hint wins
// ties and serves as the starting candidate, mirroring the pre-assigned
// category hint carried by some collectors.
func topMatch(matches map[category.ID]KeywordMatch, hint category.ID) (category.ID, KeywordMatch) {
	var (
		topID    category.ID
		topHit   KeywordMatch
		topScore int
	)

	if category.Valid(hint) {
		topID = hint
		if hit, ok := matches[hint]; ok {
			topHit = hit
			topScore = hit.BaseScore
		}
	}

	for _, id := range category.IDs() {
		hit, ok := matches[id]
		if !ok {
			continue
		}
		if hit.BaseScore > topScore {
			topID = id
			topHit = hit
			topScore = hit.BaseScore
		}
	}

	return topID, topHit
}
