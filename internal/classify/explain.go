package classify

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// maxExplanationFeatures bounds how many features an explanation names.
const maxExplanationFeatures = 3

// explainPrediction produces a natural-language explanation for a prediction.
// It prefers per-prediction attribution from the ensemble; when no feature
// carries meaningful weight it falls back to the category's stored keyword
// list, and finally to a generic sentence. Explanation never fails a
// prediction.
func explainPrediction(artifact *Artifact, normalized string, class int, category string) string {
	if explanation := attributionExplanation(artifact, normalized, class, category); explanation != "" {
		return explanation
	}
	if explanation := keywordExplanation(artifact, normalized, category); explanation != "" {
		return explanation
	}
	return fmt.Sprintf("This expense was classified as '%s' based on its description.", category)
}

type attributedFeature struct {
	name         string
	contribution float64
}

// attributionExplanation attributes the predicted probability to individual
// features along the ensemble's decision paths and names the strongest ones.
func attributionExplanation(artifact *Artifact, normalized string, class int, category string) string {
	vec, err := artifact.Vectorizer.TransformOne(normalized)
	if err != nil || len(vec.Indices) == 0 {
		return ""
	}

	contributions, err := artifact.Forest.Contributions(vec, class)
	if err != nil {
		return ""
	}

	names := artifact.Vectorizer.FeatureNames()
	var features []attributedFeature
	for _, idx := range vec.Indices {
		if contributions[idx] == 0 {
			continue
		}
		features = append(features, attributedFeature{name: names[idx], contribution: contributions[idx]})
	}
	if len(features) == 0 {
		return ""
	}

	sort.Slice(features, func(i, j int) bool {
		if math.Abs(features[i].contribution) != math.Abs(features[j].contribution) {
			return math.Abs(features[i].contribution) > math.Abs(features[j].contribution)
		}
		return features[i].name < features[j].name
	})
	if len(features) > maxExplanationFeatures {
		features = features[:maxExplanationFeatures]
	}

	parts := make([]string, len(features))
	for i, f := range features {
		direction := "supports"
		if f.contribution < 0 {
			direction = "weighs against"
		}
		parts[i] = fmt.Sprintf("'%s' %s it", f.name, direction)
	}

	return fmt.Sprintf("This expense was classified as '%s': %s.", category, joinClauses(parts))
}

// keywordExplanation matches the description's terms against the category's
// persisted top-feature list.
func keywordExplanation(artifact *Artifact, normalized string, category string) string {
	top := artifact.Meta.FeatureImportances[category]
	if len(top) == 0 {
		return ""
	}

	present := make(map[string]struct{})
	tokens := strings.Fields(normalized)
	for _, tok := range tokens {
		present[tok] = struct{}{}
	}
	for i := 0; i+1 < len(tokens); i++ {
		present[tokens[i]+" "+tokens[i+1]] = struct{}{}
	}

	var matched []string
	for _, fw := range top {
		if _, ok := present[fw.Feature]; ok {
			matched = append(matched, fmt.Sprintf("'%s'", fw.Feature))
			if len(matched) == maxExplanationFeatures {
				break
			}
		}
	}
	if len(matched) == 0 {
		return ""
	}

	return fmt.Sprintf("This expense was classified as '%s' because the description contains %s.",
		category, joinClauses(matched))
}

// joinClauses joins parts with commas and a final "and".
func joinClauses(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}
