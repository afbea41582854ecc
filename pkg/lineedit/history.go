package lineedit

// DefaultHistorySize is the number of submitted lines kept.
const DefaultHistorySize = 256

// History is a fixed-capacity ring of submitted lines. When full, the oldest
// entry is overwritten. A line equal to the most recent entry is not stored
// again.
//
// History is not safe for concurrent use; it belongs to the shell goroutine.
type History struct {
	entries []string
	start   int
	size    int
}

// NewHistory creates an empty history holding at most capacity lines.
// A non-positive capacity selects DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{entries: make([]string, capacity)}
}

// Add appends line. It reports false when the line was empty or a duplicate
// of the most recent entry.
func (h *History) Add(line string) bool {
	if line == "" {
		return false
	}
	if h.size > 0 && h.newest(0) == line {
		return false
	}

	if h.size < len(h.entries) {
		h.entries[(h.start+h.size)%len(h.entries)] = line
		h.size++
		return true
	}

	h.entries[h.start] = line
	h.start = (h.start + 1) % len(h.entries)
	return true
}

// Len returns the number of stored lines.
func (h *History) Len() int {
	return h.size
}

// Cap returns the capacity.
func (h *History) Cap() int {
	return len(h.entries)
}

// Back returns the entry n steps back from the newest; Back(0) is the most
// recent submission.
func (h *History) Back(n int) (string, bool) {
	if n < 0 || n >= h.size {
		return "", false
	}
	return h.newest(n), true
}

func (h *History) newest(n int) string {
	return h.entries[(h.start+h.size-1-n)%len(h.entries)]
}

// Entries returns the stored lines, oldest first.
func (h *History) Entries() []string {
	out := make([]string, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.entries[(h.start+i)%len(h.entries)]
	}
	return out
}

// Load replaces the contents with lines, oldest first, applying the same
// capacity and duplicate rules as Add.
func (h *History) Load(lines []string) {
	h.start, h.size = 0, 0
	for _, l := range lines {
		h.Add(l)
	}
}
