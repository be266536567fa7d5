package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

var (
	SeniorTitleKeywords = []string{"senior", "sr", "lead", "principal", "manager", "head of"}
	JuniorTitleKeywords = []string{"junior", "jr", "entry", "graduate", "trainee", "intern"}

	SeniorDescriptionPhrases = []string{"strong experience", "extensive experience", "deep understanding"}

	// "5+ years", "3 years", "1 year"
	experienceRegex = regexp.MustCompile(`(\d+)\+?\s*years?`)

	defaultSeniority = NewSeniorityClassifier(DefaultSeniorityRules())
)

// SeniorityRules parameterises the seniority precedence chain.
type SeniorityRules struct {
	SeniorTitleKeywords      []string
	JuniorTitleKeywords      []string
	SeniorDescriptionPhrases []string

	SeniorMinYears  int
	JuniorMaxYears  int
	SeniorMinSalary int
	JuniorMaxSalary int
}

// DefaultSeniorityRules is the canonical rule set; it counts "lead" and
// "principal" as senior title words.
func DefaultSeniorityRules() SeniorityRules {
	return SeniorityRules{
		SeniorTitleKeywords:      append([]string(nil), SeniorTitleKeywords...),
		JuniorTitleKeywords:      append([]string(nil), JuniorTitleKeywords...),
		SeniorDescriptionPhrases: append([]string(nil), SeniorDescriptionPhrases...),
		SeniorMinYears:           5,
		JuniorMaxYears:           2,
		SeniorMinSalary:          70000,
		JuniorMaxSalary:          40000,
	}
}

// SeniorityClassifier applies a compiled SeniorityRules.
type SeniorityClassifier struct {
	rules       SeniorityRules
	seniorTitle []string
	juniorTitle []string
}

func NewSeniorityClassifier(rules SeniorityRules) *SeniorityClassifier {
	return &SeniorityClassifier{
		rules:       rules,
		seniorTitle: foldAll(rules.SeniorTitleKeywords),
		juniorTitle: foldAll(rules.JuniorTitleKeywords),
	}
}

// foldAll folds keywords for substring matching and drops blank ones.
func foldAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if f := fold(strings.TrimSpace(kw)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// containsAny reports whether text contains any of the folded keywords.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Classify runs the precedence chain; the first rule that fires decides.
// Title keywords match as plain substrings of the folded title, so
// inflections count ("Internship", "Leadership") and so do words that merely
// contain a keyword ("International" contains "intern").
//
//  1. senior keyword in title
//  2. junior keyword in title
//  3. first "N years" in description: >= SeniorMinYears senior, <= JuniorMaxYears junior
//  4. senior phrase in description
//  5. salary >= SeniorMinSalary
//  6. 0 < salary <= JuniorMaxSalary
//  7. mid-level
func (c *SeniorityClassifier) Classify(title, description string, salary int) models.Seniority {
	titleText := fold(title)
	descText := fold(description)

	if containsAny(titleText, c.seniorTitle) {
		return models.SenioritySenior
	}
	if containsAny(titleText, c.juniorTitle) {
		return models.SeniorityJunior
	}

	if m := experienceRegex.FindStringSubmatch(descText); m != nil {
		if years, err := strconv.Atoi(m[1]); err == nil {
			if years >= c.rules.SeniorMinYears {
				return models.SenioritySenior
			}
			if years <= c.rules.JuniorMaxYears {
				return models.SeniorityJunior
			}
		}
	}

	for _, phrase := range c.rules.SeniorDescriptionPhrases {
		if phrase != "" && strings.Contains(descText, fold(phrase)) {
			return models.SenioritySenior
		}
	}

	if salary >= c.rules.SeniorMinSalary {
		return models.SenioritySenior
	}
	if salary > 0 && salary <= c.rules.JuniorMaxSalary {
		return models.SeniorityJunior
	}
	return models.SeniorityMid
}

// ClassifySeniority classifies with DefaultSeniorityRules.
func ClassifySeniority(title, description string, salary int) models.Seniority {
	return defaultSeniority.Classify(title, description, salary)
}
