package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
)

const (
	hoursPerDay        = 8
	workingDaysPerYear = 250

	// above these means the figure was already annual
	maxHourlyRate = 200
	maxDailyRate  = 2000

	// anything larger is a phone number or a reference, not pay
	maxPlausibleSalary = 1e9
)

var (
	salaryNumberRegex    = regexp.MustCompile(`\d+(?:\.\d+)?`)
	salaryThousandsRegex = regexp.MustCompile(`\dk`)
	salaryCleaner        = strings.NewReplacer(",", "", "£", "", "$", "", "€", "")

	nonNumericSalaryMarkers = []string{"competitive", "market rate"}
)

// ParseSalary converts a salary phrase into an annual figure in whole pounds.
// It returns 0 when the phrase is missing, non-numeric or unparseable.
//
// Every number in the phrase is averaged, so a range resolves to its
// midpoint. A "k" straight after a digit scales all numbers by 1000. The
// mean is then annualized by unit:
//
//	"hour" in text:  mean*8*250, unless mean > 200 (already annual)
//	"day" in text:   mean*250,   unless mean > 2000 (already annual)
//	100 < mean < 1000: a day rate without a unit, mean*250
//	mean < 100:        an hourly rate without a unit, mean*8*250
//	otherwise:         mean as given
func ParseSalary(text string) int {
	if models.IsMissing(text) {
		return 0
	}
	lower := strings.ToLower(text)

	for _, marker := range nonNumericSalaryMarkers {
		if strings.Contains(lower, marker) {
			return 0
		}
	}

	tokens := salaryNumberRegex.FindAllString(salaryCleaner.Replace(lower), -1)
	if len(tokens) == 0 {
		return 0
	}

	multiplier := 1.0
	if salaryThousandsRegex.MatchString(lower) {
		multiplier = 1000
	}

	var sum float64
	for _, tok := range tokens {
		n, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0
		}
		sum += n * multiplier
	}
	mean := sum / float64(len(tokens))

	annual := annualize(mean, lower)
	if annual < 0 || annual > maxPlausibleSalary {
		return 0
	}
	return int(annual)
}

func annualize(mean float64, lower string) float64 {
	switch {
	case strings.Contains(lower, "hour"):
		if mean > maxHourlyRate {
			return mean
		}
		return mean * hoursPerDay * workingDaysPerYear
	case strings.Contains(lower, "day"):
		if mean > maxDailyRate {
			return mean
		}
		return mean * workingDaysPerYear
	case mean > 100 && mean < 1000:
		return mean * workingDaysPerYear
	case mean < 100:
		return mean * hoursPerDay * workingDaysPerYear
	default:
		return mean
	}
}
