package services

import (
	"regexp"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driving"
)

// Ensure Suggester implements the interface.
var _ driving.SuggestionService = (*Suggester)(nil)

// subjectMathematics is the subject label under which category detection
// applies.
const subjectMathematics = "Mathematics"

// classificationRule pairs a label with the pattern that detects it.
// Each rule set is evaluated in declaration order and the first matching
// rule wins; adding a rule earlier in a list raises its priority.
type classificationRule struct {
	label   string
	pattern *regexp.Regexp
}

var examTypeRules = []classificationRule{
	{"SAT", regexp.MustCompile(`(?i)\bSAT\b`)},
	{"ACT", regexp.MustCompile(`(?i)\bACT\b`)},
	{"AP", regexp.MustCompile(`(?i)\bAP\b|\badvanced placement\b`)},
	{"Final Exam", regexp.MustCompile(`(?i)\bfinal\s+exam\b|\bfinals\b`)},
	{"Midterm", regexp.MustCompile(`(?i)\bmid-?term\b`)},
	{"Mock Exam", regexp.MustCompile(`(?i)\bmock\s+(exam|test)\b|\bpractice\s+test\b`)},
	{"Quiz", regexp.MustCompile(`(?i)\bquiz\b|\bpop\s+quiz\b`)},
}

var subjectRules = []classificationRule{
	{subjectMathematics, regexp.MustCompile(`(?i)\bmath(ematics)?\b|\bequation\b|\bsolve\s+for\b|\bintegral\b|\bderivative\b|\bpolynomial\b|\bfraction\b`)},
	{"Physics", regexp.MustCompile(`(?i)\bphysics\b|\bvelocity\b|\bacceleration\b|\bnewton\b|\bmomentum\b|\bkinetic\b`)},
	{"Chemistry", regexp.MustCompile(`(?i)\bchemistry\b|\bmolecule\b|\bmolar\b|\breaction\b|\bcompound\b|\belectron\b`)},
	{"Biology", regexp.MustCompile(`(?i)\bbiology\b|\bcell\b|\bdna\b|\bphotosynthesis\b|\borganism\b|\benzyme\b`)},
	{"English", regexp.MustCompile(`(?i)\bgrammar\b|\bvocabulary\b|\bpassage\b|\bessay\b|\breading\s+comprehension\b`)},
	{"History", regexp.MustCompile(`(?i)\bhistory\b|\brevolution\b|\bempire\b|\btreaty\b|\bworld\s+war\b`)},
}

var categoryRules = []classificationRule{
	{"Calculus", regexp.MustCompile(`(?i)\bcalculus\b|\bintegral\b|\bderivative\b|\blimit\s+of\b`)},
	{"Trigonometry", regexp.MustCompile(`(?i)\btrigonometry\b|\bsine\b|\bcosine\b|\btangent\b|\bsin\b|\bcos\b|\btan\b`)},
	{"Geometry", regexp.MustCompile(`(?i)\bgeometry\b|\btriangle\b|\bcircle\b|\bangle\b|\bperimeter\b|\barea\s+of\b`)},
	{"Probability & Statistics", regexp.MustCompile(`(?i)\bprobability\b|\bstatistics\b|\bmean\b|\bmedian\b|\bvariance\b|\bdice\b`)},
	{"Algebra", regexp.MustCompile(`(?i)\balgebra\b|\bequation\b|\bpolynomial\b|\bquadratic\b|\bsolve\s+for\b|\bvariable\b`)},
	{"Number Theory", regexp.MustCompile(`(?i)\bprime\b|\bdivisible\b|\bfactor\s+of\b|\bremainder\b|\bmodulo\b`)},
	{"Arithmetic", regexp.MustCompile(`(?i)\baddition\b|\bsubtraction\b|\bmultiplication\b|\bdivision\b|\bfraction\b`)},
}

// Suggester guesses exam type, subject and category from raw text using
// ordered regex rules. It is used to pre-fill manual-entry forms when the
// matcher finds nothing. Pure and deterministic, no I/O.
type Suggester struct{}

// NewSuggester creates a new metadata suggester.
func NewSuggester() *Suggester {
	return &Suggester{}
}

// Suggest derives a metadata suggestion from text. The three rule sets are
// independent; an unmatched rule set leaves its field empty. Category
// detection only runs when no subject was found or the subject is
// mathematics, because the category labels are sub-classifications of
// mathematics and would mislead for other subjects.
func (s *Suggester) Suggest(text string) domain.MetadataSuggestion {
	suggestion := domain.MetadataSuggestion{
		ExamType: firstMatch(examTypeRules, text),
		Subject:  firstMatch(subjectRules, text),
	}
	if suggestion.Subject == "" || suggestion.Subject == subjectMathematics {
		suggestion.Category = firstMatch(categoryRules, text)
	}
	return suggestion
}

// firstMatch returns the label of the first rule whose pattern matches.
func firstMatch(rules []classificationRule, text string) string {
	for _, rule := range rules {
		if rule.pattern.MatchString(text) {
			return rule.label
		}
	}
	return ""
}
