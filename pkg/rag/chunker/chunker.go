// Package chunker splits extracted document text into overlapping
// windows and locates each window inside the original document so
// citations can point at character ranges.
package chunker

const (
	DefaultChunkSize = 800
	DefaultOverlap   = 200
)

// Chunk is one retrieval unit. Start and End are rune offsets into the
// source document, with End exclusive.
type Chunk struct {
	Index int
	Text  string
	Start int
	End   int
}

// SplitText splits a long string into windows of approximately
// chunkSize characters with an overlap to preserve context at
// boundaries. This is a simple character-based splitter.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}

// MapPositions locates each chunk text inside the source document.
// The search moves forward only: after a hit the next search begins one
// rune past the previous chunk start, which keeps repeated text from
// mapping to the same spot. When a chunk cannot be found (for example
// the splitter normalized whitespace) its position is estimated
// sequentially from the current search cursor.
func MapPositions(source string, texts []string) []Chunk {
	src := []rune(source)
	chunks := make([]Chunk, 0, len(texts))

	searchStart := 0
	for i, text := range texts {
		needle := []rune(text)
		start := indexRunesFrom(src, needle, searchStart)
		if start >= 0 {
			searchStart = start + 1
		} else {
			start = searchStart
		}
		end := start + len(needle)

		chunks = append(chunks, Chunk{
			Index: i,
			Text:  text,
			Start: start,
			End:   end,
		})
	}

	return chunks
}

// Split chunks the document and maps every window back to its rune
// range in the source text.
func Split(source string, chunkSize int, overlap int) []Chunk {
	return MapPositions(source, SplitText(source, chunkSize, overlap))
}

func indexRunesFrom(haystack, needle []rune, from int) int {
	if from < 0 {
		from = 0
	}
	if len(needle) == 0 {
		return from
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
