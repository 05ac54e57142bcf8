package sentiment

import "strings"

// Label is a binary sentiment classification
type Label string

const (
	LabelPositive Label = "POSITIVE"
	LabelNegative Label = "NEGATIVE"
)

// Classifier assigns a sentiment label to a piece of article text.
// ok is false when the text carries no classifiable signal.
// ⭐ SSOT: 감성 분류 경계는 이 인터페이스
type Classifier interface {
	Classify(text string) (label Label, ok bool)
}

// LexiconClassifier is the default word-count classifier. It tallies
// positive and negative lexicon hits; ties and empty tallies are
// unclassifiable.
type LexiconClassifier struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

// Finance-leaning word lists. Terms are matched on lowercased,
// punctuation-stripped tokens.
var (
	positiveWords = []string{
		"gain", "gains", "gained", "rally", "rallies", "surge", "surged",
		"soar", "soared", "jump", "jumped", "climb", "climbed", "rise",
		"rises", "rose", "beat", "beats", "strong", "stronger", "record",
		"growth", "grow", "grew", "profit", "profits", "profitable",
		"upgrade", "upgraded", "outperform", "bullish", "optimistic",
		"positive", "boost", "boosted", "exceed", "exceeded", "success",
		"successful", "win", "wins", "winner", "upbeat", "momentum",
		"recovery", "rebound", "rebounded", "breakthrough", "expansion",
	}
	negativeWords = []string{
		"loss", "losses", "lost", "fall", "falls", "fell", "drop",
		"dropped", "plunge", "plunged", "slump", "slumped", "slide",
		"tumble", "tumbled", "decline", "declined", "weak", "weaker",
		"miss", "missed", "misses", "downgrade", "downgraded", "bearish",
		"pessimistic", "negative", "concern", "concerns", "worried",
		"worry", "fear", "fears", "risk", "risks", "warning", "warn",
		"warned", "lawsuit", "layoff", "layoffs", "bankruptcy", "fraud",
		"investigation", "recall", "cut", "cuts", "selloff", "crash",
	}
)

// NewLexiconClassifier creates the default classifier
func NewLexiconClassifier() *LexiconClassifier {
	c := &LexiconClassifier{
		positive: make(map[string]struct{}, len(positiveWords)),
		negative: make(map[string]struct{}, len(negativeWords)),
	}
	for _, w := range positiveWords {
		c.positive[w] = struct{}{}
	}
	for _, w := range negativeWords {
		c.negative[w] = struct{}{}
	}
	return c
}

// Classify tallies lexicon hits over the text's tokens
func (c *LexiconClassifier) Classify(text string) (Label, bool) {
	var pos, neg int
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:\"'()[]")
		if _, ok := c.positive[token]; ok {
			pos++
		}
		if _, ok := c.negative[token]; ok {
			neg++
		}
	}

	if pos > neg {
		return LabelPositive, true
	}
	if neg > pos {
		return LabelNegative, true
	}
	return "", false
}
