package reflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReflow(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"three sentences", "A. B? C", "A.\nB?\nC"},
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
		{"single sentence", "  Check the load table.  ", "Check the load table."},
		{"digit starts a sentence", "See note. 3 items remain!", "See note.\n3 items remain!"},
		{"lowercase continuation", "Use e.g. the other value. Then resubmit.", "Use e.g. the other value.\nThen resubmit."},
		{"abbreviation before a number splits", "Refer to Fig. 2 for details.", "Refer to Fig.\n2 for details."},
		{"newline counts as whitespace", "First line.\nSecond line.", "First line.\nSecond line."},
		{"runs of whitespace", "Done.   \n  Next one.", "Done.\nNext one."},
		{"no space after punctuation", "v1.2.3 released.Next", "v1.2.3 released.Next"},
		{"trailing terminal", "Wrong value!", "Wrong value!"},
		{"non-ascii capital does not start a sentence", "Fixed. Über alles.", "Fixed. Über alles."},
		{"multiple punctuation", "Really?! Yes.", "Really?!\nYes."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reflow(tt.in))
		})
	}
}

func TestSentencesHasNoBlankSegments(t *testing.T) {
	for _, in := range []string{"", "   ", "A.  B.  ", ". X", "Ok.   Then"} {
		for _, s := range Sentences(in) {
			assert.NotEmpty(t, s, "input %q", in)
			assert.Equal(t, strings.TrimSpace(s), s)
		}
	}
}
