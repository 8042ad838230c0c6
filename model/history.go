package model

// defaultHistorySize keeps enough states to catch period-2 and period-3 cycles
const defaultHistorySize = 5

// History remembers the hashes of recent grids to detect still lifes and
// short cycles
type History struct {
	size   int
	hashes []string
}

// NewHistory returns a History keeping the last size states
func NewHistory(size int) *History {
	if size <= 0 {
		size = defaultHistorySize
	}
	return &History{size: size}
}

// Observe records g and reports whether it repeats one of the last three
// recorded states
func (h *History) Observe(g Grid) (stagnant bool) {
	hash := g.Hash()

	for i := len(h.hashes) - 1; i >= 0 && i >= len(h.hashes)-3; i-- {
		if h.hashes[i] == hash {
			stagnant = true
			break
		}
	}

	h.hashes = append(h.hashes, hash)
	if len(h.hashes) > h.size {
		h.hashes = h.hashes[1:]
	}
	return stagnant
}

// Reset forgets every recorded state
func (h *History) Reset() {
	h.hashes = nil
}
