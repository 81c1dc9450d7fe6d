// Package interactions performs a pairwise lexical scan of active
// medications' free-text interaction lists.
//
// This is substring matching against user- or import-supplied text, not a
// pharmacological database: different naming between two records yields a
// false negative, and there is no severity ranking.
package interactions

import (
	"fmt"
	"strings"

	"github.com/jordanvik/medikeep/internal/models"
)

// Check scans every unordered pair of active medications and emits a
// warning when either side's interaction text mentions the other's name or
// generic name as a case-insensitive substring. The test is bidirectional,
// so an interaction listed on only one of the two records still surfaces.
// At most one warning is emitted per pair.
func Check(medications []models.Medication) []models.InteractionWarning {
	var active []models.Medication
	for _, m := range medications {
		if m.Active {
			active = append(active, m)
		}
	}

	var warnings []models.InteractionWarning
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			if mentions(a, b) || mentions(b, a) {
				warnings = append(warnings, models.InteractionWarning{
					MedicationA: a.ID,
					MedicationB: b.ID,
					NameA:       a.Name,
					NameB:       b.Name,
					Message:     fmt.Sprintf("potential interaction between %s and %s; review with a pharmacist", a.Name, b.Name),
				})
			}
		}
	}

	return warnings
}

// mentions reports whether med's interaction text contains other's name or
// generic name.
func mentions(med, other models.Medication) bool {
	targets := []string{other.Name, other.GenericName}
	for _, entry := range med.Interactions {
		entry = strings.ToLower(entry)
		for _, target := range targets {
			if target == "" {
				continue
			}
			if strings.Contains(entry, strings.ToLower(target)) {
				return true
			}
		}
	}
	return false
}
