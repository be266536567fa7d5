package normalize

var employmentTypeRemap = map[string]string{
	"Temporary":    "Contract",
	"Not Assigned": "Permanent",
}

// NormalizeEmploymentType folds the board's minor contract labels into
// Contract or Permanent. Other labels pass through unchanged.
func NormalizeEmploymentType(employmentType string) string {
	if mapped, ok := employmentTypeRemap[employmentType]; ok {
		return mapped
	}
	return employmentType
}
