package textutil

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// Closest returns the index of the candidate most similar to target and its
// score. The index is -1 when no candidate shares a token with target.
func Closest(target string, candidates []string) (int, float64) {
	ref := NewFingerprint(target)
	best, bestScore := -1, 0.0
	for i, candidate := range candidates {
		score := CosineSimilarity(ref, NewFingerprint(candidate))
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}
