package sentiment

import "testing"

func TestLexiconClassify(t *testing.T) {
	c := NewLexiconClassifier()

	tests := []struct {
		name      string
		text      string
		wantLabel Label
		wantOK    bool
	}{
		{
			name:      "clearly positive",
			text:      "Shares surged to a record high as profit beat expectations",
			wantLabel: LabelPositive,
			wantOK:    true,
		},
		{
			name:      "clearly negative",
			text:      "The stock plunged after the company warned of losses and layoffs",
			wantLabel: LabelNegative,
			wantOK:    true,
		},
		{
			name:   "neutral text",
			text:   "The company held its annual meeting on Tuesday",
			wantOK: false,
		},
		{
			name:   "balanced tie",
			text:   "Gains in one segment offset losses in another",
			wantOK: false,
		},
		{
			name:   "empty",
			text:   "",
			wantOK: false,
		},
		{
			name:      "case insensitive with punctuation",
			text:      "RALLY! Shares climbed, beat estimates.",
			wantLabel: LabelPositive,
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, ok := c.Classify(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("Classify() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && label != tt.wantLabel {
				t.Errorf("Classify() label = %s, want %s", label, tt.wantLabel)
			}
		})
	}
}
