package textsplit

// Size buckets for adaptive chunking. Larger documents get larger chunks,
// trading retrieval granularity for fewer embedding calls.
const (
	charsPerWordEstimate = 6

	smallDocThreshold  = 2000
	mediumDocThreshold = 8000
	largeDocThreshold  = 20000

	smallChunkSize  = 800
	mediumChunkSize = 1500
	largeChunkSize  = 2500
	xlargeChunkSize = 3500

	smallChunkOverlap  = 100
	mediumChunkOverlap = 150
	largeChunkOverlap  = 200
	xlargeChunkOverlap = 300
)

// Params selects a (chunk size, chunk overlap) pair from an estimated
// document word count.
func Params(wordCount int) (chunkSize, chunkOverlap int) {
	estimatedChars := wordCount * charsPerWordEstimate

	switch {
	case estimatedChars <= smallDocThreshold:
		return smallChunkSize, smallChunkOverlap
	case estimatedChars <= mediumDocThreshold:
		return mediumChunkSize, mediumChunkOverlap
	case estimatedChars <= largeDocThreshold:
		return largeChunkSize, largeChunkOverlap
	default:
		return xlargeChunkSize, xlargeChunkOverlap
	}
}

// ForDocument returns a splitter configured for a document of the given
// estimated word count.
func ForDocument(wordCount int) *Splitter {
	size, overlap := Params(wordCount)
	return NewSplitter(size, overlap)
}
