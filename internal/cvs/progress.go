package cvs

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Sub-fields counted per list entry. Education and experience entries carry
// five meaningful fields, skills and projects two.
const (
	educationWeight  = 5
	experienceWeight = 5
	skillWeight      = 2
	projectWeight    = 2
)

// Progress derives the completion percentage of a CV.
func Progress(cv CV) int {
	return ComputeProgress(toDocument(cv))
}

// ComputeProgress derives a completion percentage in [0,100] from the JSON
// object form of a CV. Each personalInfo field present in the document is one
// fillable unit; each list entry contributes a fixed number of units. A list
// with zero entries contributes nothing to either side, so adding an empty
// section never penalizes progress. A document with nothing fillable is 0%.
func ComputeProgress(doc map[string]any) int {
	var fillable, filled int

	if info, ok := doc["personalInfo"].(map[string]any); ok {
		for _, value := range info {
			fillable++
			if isFilled(value) {
				filled++
			}
		}
	}

	for _, section := range []struct {
		key    string
		weight int
	}{
		{"education", educationWeight},
		{"experience", experienceWeight},
		{"skills", skillWeight},
		{"projects", projectWeight},
	} {
		entries, ok := doc[section.key].([]any)
		if !ok {
			continue
		}
		for _, raw := range entries {
			fillable += section.weight
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			entryFilled := 0
			for _, value := range entry {
				if isFilled(value) {
					entryFilled++
				}
			}
			if entryFilled > section.weight {
				entryFilled = section.weight
			}
			filled += entryFilled
		}
	}

	if fillable == 0 {
		return 0
	}
	pct := int(math.Round(float64(filled) / float64(fillable) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// isFilled reports whether a value's trimmed string representation is
// non-empty. Numbers always render non-empty, so a present level counts.
func isFilled(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case float64:
		return strings.TrimSpace(strconv.FormatFloat(v, 'f', -1, 64)) != ""
	case bool:
		return true
	default:
		return false
	}
}

// toDocument converts a typed CV to its JSON object form.
func toDocument(cv CV) map[string]any {
	data, err := json.Marshal(cv)
	if err != nil {
		return nil
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc
}
