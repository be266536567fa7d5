package normalize

import (
	"strings"

	"github.com/oscarl77/tech-job-market-analysis/internal/models"
	"github.com/oscarl77/tech-job-market-analysis/internal/reference"
)

// OtherUKCity is returned for a known location outside the target cities.
const OtherUKCity = "Other UK"

// ClassifyCity returns the first target city, in list order, whose name
// appears anywhere in the location text. A missing location yields "N/A".
func ClassifyCity(location string, cities []string) string {
	if models.IsMissing(location) {
		return models.NotAvailable
	}
	folded := fold(location)
	for _, city := range cities {
		if strings.Contains(folded, fold(city)) {
			return city
		}
	}
	return OtherUKCity
}

// ClassifyRegion walks the table in declaration order and returns the region
// of the first area found in the location text. The first hit ends both
// loops, so a substring shared by two regions resolves to the earlier one.
func ClassifyRegion(location string, regions reference.RegionTable) string {
	if models.IsMissing(location) {
		return reference.OtherRegion
	}
	folded := fold(location)
	for _, region := range regions {
		for _, area := range region.Areas {
			if strings.Contains(folded, fold(area)) {
				return region.Name
			}
		}
	}
	return reference.OtherRegion
}
