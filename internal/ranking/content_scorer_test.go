package ranking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhraseProximity(t *testing.T) {
	far := "صبر " + strings.Repeat("كلمه ", 12) + "فرج"
	farther := "صبر " + strings.Repeat("كلمه ", 30) + "فرج"
	farthest := "صبر " + strings.Repeat("كلمه ", 50) + "فرج"

	tests := []struct {
		name  string
		text  string
		terms []string
		want  float64
	}{
		{"adjacent", "الصبر مفتاح الفرج", []string{"صبر", "فرج"}, 0.25},
		{"within twenty", far, []string{"صبر", "فرج"}, 0.08},
		{"within forty", farther, []string{"صبر", "فرج"}, 0.03},
		{"too far", farthest, []string{"صبر", "فرج"}, 0},
		{"single term", "الصبر مفتاح الفرج", []string{"صبر"}, 0},
		{"one term present", "الصبر مفتاح", []string{"صبر", "فرج"}, 0},
		{"empty text", "", []string{"صبر", "فرج"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PhraseProximity(tt.text, tt.terms), 1e-9)
		})
	}
}

func TestPhraseMatches(t *testing.T) {
	text := "قال إن الصبر مفتاح الفرج عند الشدة"

	assert.InDelta(t, 0.4, PhraseMatches(text, "الصبر مفتاح الفرج"), 1e-9, "capped")
	assert.InDelta(t, 0.15, PhraseMatches(text, "الصبر مفتاح"), 1e-9)
	assert.Zero(t, PhraseMatches(text, "الصبر"), "single word has no phrase")
	assert.Zero(t, PhraseMatches(text, "الفرج الصبر"), "order matters")
	assert.Zero(t, PhraseMatches("", "الصبر مفتاح"))
}

func TestContextualRelevance(t *testing.T) {
	text := "الصبر مفتاح الفرج عند الشدة. والشكر نعمة عظيمة للمؤمن."

	got := ContextualRelevance(text, []string{"صبر", "فرج", "شكر"})
	assert.InDelta(t, 0.2*2.0/3.0, got, 1e-9)

	multi := "الصبر مفتاح الفرج عند الشدة. وبالصبر يأتي الفرج بعد الضيق."
	assert.InDelta(t, 0.3, ContextualRelevance(multi, []string{"صبر", "فرج"}), 1e-9,
		"two sentences with both terms earn the bonus")

	assert.Zero(t, ContextualRelevance("قصير.", []string{"صبر"}), "short sentences are ignored")
	assert.Zero(t, ContextualRelevance(text, nil))
}

func TestValidateAnswerType(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		qtype QuestionType
		want  float64
	}{
		{"when", "في سنة عشر وفي يوم الجمعة", QuestionWhen, 0.2},
		{"who capped", "قال النبي للرجل والشيخ والإمام", QuestionWho, 0.25},
		{"why counts both spellings", "صبر لأنه يرجو الثواب", QuestionWhy, 0.2},
		{"what has no rule", "في سنة عشر", QuestionWhat, 0},
		{"no question", "في سنة عشر", QuestionNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateAnswerType(tt.text, &QueryAnalysis{QuestionType: tt.qtype})
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
	assert.Zero(t, ValidateAnswerType("في سنة", nil))
}

func TestDetectNegationContext(t *testing.T) {
	assert.InDelta(t, 0.15, DetectNegationContext("لا صبر له", []string{"صبر"}), 1e-9)
	assert.InDelta(t, 0.3, DetectNegationContext("ليس لا صبر", []string{"صبر"}), 1e-9)
	assert.InDelta(t, 0.4, DetectNegationContext("لا لن لم صبر ليس صبر", []string{"صبر"}), 1e-9, "capped")
	assert.Zero(t, DetectNegationContext("الصبر مفتاح الفرج", []string{"صبر"}))
	assert.Zero(t, DetectNegationContext("لا صبر", nil))
}

func TestConceptBonus(t *testing.T) {
	question := &QueryAnalysis{
		QuestionType:    QuestionWhat,
		IsQuestion:      true,
		NeedsDefinition: true,
		Concepts:        []string{"الصبر", "صبر"},
	}
	text := "الصبر عبارة عن حبس النفس"

	assert.InDelta(t, 0.33, ConceptBonus(text, question, 0.9, 0, 0), 1e-9)
	assert.InDelta(t, 0.15, ConceptBonus(text, question, 0, 0, 0), 1e-9)

	statement := &QueryAnalysis{Concepts: []string{"الصبر"}}
	assert.Zero(t, ConceptBonus(text, statement, 0.9, 0, 0), "only questions earn the bonus")

	causal := &QueryAnalysis{QuestionType: QuestionWhy, IsQuestion: true, NeedsCausality: true}
	assert.InDelta(t, 0.105, ConceptBonus(text, causal, 0, 0.7, 0), 1e-9,
		"detector share applies without concepts")

	capped := &QueryAnalysis{
		IsQuestion: true, NeedsDefinition: true, NeedsCausality: true, NeedsMethod: true,
		Concepts: []string{"الصبر", "صبر"},
	}
	assert.InDelta(t, 0.35, ConceptBonus(text, capped, 0.9, 0.7, 0.8), 1e-9)
}
