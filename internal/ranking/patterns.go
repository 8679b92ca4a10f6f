package ranking

import (
	"strings"

	"github.com/hyperjump/baheth/internal/arabic"
)

// Static phrase and indicator tables. Entries are written as they appear in
// text and folded once at init; duplicates after folding are kept on purpose
// so every listed spelling keeps its own weight.

// punctuation is replaced with spaces before analysis.
var punctuation = strings.NewReplacer(
	".", " ", ",", " ", ";", " ", ":", " ", "!", " ", "?", " ",
	"،", " ", "؛", " ", "؟", " ", "«", " ", "»", " ",
	"\"", " ", "“", " ", "”", " ",
	"(", " ", ")", " ", "[", " ", "]", " ", "{", " ", "}", " ",
)

// conceptTrim is stripped from individual words when extracting concepts and
// subjects.
const conceptTrim = "؟?،,;:.!«»\"“”()[]{}"

type questionPattern struct {
	qtype    QuestionType
	triggers []string
}

// questionPatterns is tried in order; the first type with a matching trigger
// wins.
var questionPatterns = []questionPattern{
	{QuestionWho, []string{"من", "من هو", "من هي"}},
	{QuestionWhat, []string{"ما", "ماذا", "ما هو", "ما هي"}},
	{QuestionWhen, []string{"متى", "في اي", "في ايه"}},
	{QuestionWhere, []string{"اين", "في اين"}},
	{QuestionHow, []string{"كيف", "بماذا", "كيف يستدل", "كيفية"}},
	{QuestionWhy, []string{"لماذا", "لم", "ما سبب", "ما السبب", "سبب"}},
	{QuestionWhich, []string{"اي", "ايه"}},
}

var (
	causalityTriggers  = foldAll([]string{"سبب", "لماذا", "لم", "علة"})
	methodTriggers     = foldAll([]string{"كيف", "يستدل", "استدلال", "كيفية", "بماذا"})
	definitionTriggers = foldAll([]string{"ما هو", "ما هي", "تعريف", "معنى", "ماهية"})
	definitionLeads    = foldAll([]string{"ما هو", "ما هي"})
	methodVerbs        = foldAll([]string{"يستدل", "يستشهد", "يثبت", "يبرهن", "يصل", "يعرف", "يتوصل"})
)

const (
	subjectCausalityMarker = "سبب"
	subjectMethodMarker    = "على"
	howMarker              = "كيف"
	verbPrefix             = "ي"
)

// analysisStopWords filters concepts.
var analysisStopWords = foldSet([]string{
	"في", "من", "إلى", "الى", "على", "عن", "هذا", "هذه", "ذلك", "تلك",
	"هل", "كان", "يكون", "أن", "ان", "إن", "ين", "قد", "لقد", "كل",
	"بعض", "أي", "اي", "التي", "الذي", "هو", "هي", "هم", "هن",
	"و", "أو", "او", "لكن", "ثم", "ف", "ب", "ل", "ك",
	"فيه", "به", "له", "منه", "عنه", "ما", "متى", "اين", "كيف", "لماذا", "ماذا",
})

// queryStopWords filters the search words. It differs from
// analysisStopWords: it keeps interrogatives and drops corpus boilerplate.
// Entries are folded at init, so إلى, أن, أي and أو also drop their folded
// forms الي, ان, اي and او. The unfolded list never matched those, and the
// extra filtering lowers word counts, which can move a query into the
// short-query weights.
var queryStopWords = foldSet([]string{
	"في", "من", "إلى", "على", "عن", "هذا", "هذه", "ذلك", "تلك",
	"هل", "ما", "كان", "يكون", "أن", "إن", "قد", "لقد", "كل",
	"بعض", "أي", "التي", "الذي", "هو", "هي", "هم", "هن",
	"و", "أو", "لكن", "ثم", "ف", "ب", "ل", "ك", "النص", "بحسب",
})

// veryCommonShort terms are penalized by the term quality ranker.
var veryCommonShort = foldSet([]string{"في", "من", "عن", "على", "هو", "هي", "كان", "قد"})

// Query intent triggers.
var (
	quoteIntent      = foldAll([]string{"قال", "نص", "عبارة", "ذكر"})
	summaryIntent    = foldAll([]string{"ملخص", "باختصار", "مختصر"})
	comparisonIntent = foldAll([]string{"الفرق", "مقارنة", "بين"})
	listIntent       = foldAll([]string{"اذكر", "عدد", "اسرد"})
)

var (
	strongQuoteIndicators = foldAll([]string{
		"قالوا", "قال", "قالت", "يقول", "يقولون",
		"فقال", "فقالوا", "قال له", "قالوا له",
	})
	impressionIndicators = foldAll([]string{
		"انطباع", "رأي", "رأى", "وصف", "وصفوا",
		"اعتراف", "معترفين", "يصفونه", "اعترفيين",
	})
	quoteMarkers = foldAll([]string{"«", "»", "\"", "\"", "\"", "إن", "أن", "إنّ", "أنّ"})
)

// indicator is a folded pattern with its weight class.
type indicator struct {
	text   string
	strong bool
}

func indicators(all []string, strong ...string) []indicator {
	strongSet := make(map[string]bool, len(strong))
	for _, s := range strong {
		strongSet[s] = true
	}
	out := make([]indicator, len(all))
	for i, s := range all {
		out[i] = indicator{text: arabic.Fold(s), strong: strongSet[s]}
	}
	return out
}

var causalityIndicators = indicators([]string{
	"لانه", "لأنه", "لان", "لأن",
	"بسبب", "السبب", "سبب",
	"لذلك", "لهذا", "من اجل",
	"نتيجة", "نتيجه", "بناء علي",
	"ذلك ان", "اذ ان", "حيث ان",
	"فان", "كون", "علة", "معلول",
}, "لانه", "لأنه", "بسبب", "السبب")

var methodIndicators = indicators([]string{
	"يستدل", "استدلال", "دليل", "دلائل",
	"يستشهد", "استشهاد", "شهادة", "شاهد",
	"بواسطة", "وسيلة", "طريقة", "منهج", "مناهج",
	"كيفية", "اسلوب", "نهج", "مسلك",
	"يتوصل", "توصل", "وسط", "برهان",
}, "يستدل", "استدلال", "يستشهد", "استشهاد", "منهج", "مناهج", "برهان")

var (
	sequentialIndicators = foldAll([]string{
		"واحدا بعد واحد", "بعد واحد",
		"ثم", "فثم", "اولا", "ثانيا", "ثالثا",
		"الخطوة", "المرحلة", "اولا ثم",
		"بعد ذلك", "من ثم", "تاليا",
	})
	definitiveMethodIndicators = foldAll([]string{
		"فهؤلاء هم الذين", "هؤلاء هم", "هم الذين",
		"هذا المنهاج", "هذه الطريقة", "هذا الاسلوب",
		"احكم واشرف", "افضل", "اصح",
	})
	testimonyForms = foldAll([]string{"يستشهد", "استشهاد"})
)

var (
	definitionPatterns = foldAll([]string{
		"عبارة عن", "عباره عن",
		"هو عبارة", "هي عبارة",
		"معناه", "معناها", "معنى",
		"المراد من", "المراد به", "المقصود من",
		"يعني", "اي", "بمعنى", "والمعنى",
		"تعريف", "تعريفه", "تعريفها",
		"حقيقة", "حقيقته", "حقيقتها",
		"ماهية", "ماهيته", "ماهيتها",
		"هو ان", "هي ان",
	})
	strongDefinitionPatterns = foldAll([]string{
		"عبارة عن", "عباره عن",
		"المراد من", "المراد به",
		"حقيقة", "حقيقته",
		"تعريف", "تعريفه",
		"ماهية", "ماهيته",
	})
	explanatoryConnectors = foldAll([]string{
		"وهو", "وهي", "فهو", "فهي",
		"اقول", "والمعنى", "يعني ان",
		"بمعنى ان", "اي ان",
	})
)

// answerTypeRule scores indicators expected in an answer to a question type.
type answerTypeRule struct {
	indicators []string
	step       float64
	cap        float64
}

var answerTypeRules = map[QuestionType]answerTypeRule{
	QuestionWho: {
		indicators: foldAll([]string{
			"النبي", "الرسول", "حضرة", "شخص", "رجل", "امرأة",
			"الامام", "العالم", "الشيخ", "المؤمن", "المؤمنون",
		}),
		step: 0.1, cap: 0.25,
	},
	QuestionWhen: {
		indicators: foldAll([]string{
			"سنة", "عام", "يوم", "شهر", "قبل", "بعد", "خلال",
			"وقت", "زمن", "تاريخ", "حين", "عندما",
		}),
		step: 0.1, cap: 0.25,
	},
	QuestionWhere: {
		indicators: foldAll([]string{
			"في", "بلد", "مدينة", "مكان", "موضع", "ارض",
			"دار", "بيت", "مسجد", "قرية",
		}),
		step: 0.1, cap: 0.25,
	},
	QuestionHow: {
		indicators: foldAll([]string{
			"بواسطة", "وسيلة", "طريقة", "منهج", "اسلوب",
			"كيفية", "ثم", "اولا", "ثانيا", "الخطوة",
		}),
		step: 0.08, cap: 0.25,
	},
	QuestionWhy: {
		indicators: foldAll([]string{
			"لانه", "لأنه", "بسبب", "السبب", "لذلك", "لهذا",
			"نتيجة", "علة", "ذلك ان", "فان",
		}),
		step: 0.1, cap: 0.3,
	},
}

var negationMarkers = foldSet([]string{"لا", "ليس", "لم", "لن", "ما", "غير", "ليست"})

// sentenceBreaks split a document into sentences for contextual relevance.
const sentenceBreaks = ".!؟।"

func foldAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = arabic.Fold(s)
	}
	return out
}

func foldSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		out[arabic.Fold(s)] = struct{}{}
	}
	return out
}

func containsAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func countContained(text string, patterns []string) int {
	n := 0
	for _, p := range patterns {
		if strings.Contains(text, p) {
			n++
		}
	}
	return n
}
