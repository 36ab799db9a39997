package http

import "encoding/json"

// optionsForPlay parses a question's stored options payload into a plain
// string list for rendering. When the quiz randomises answers and there is
// more than one option, the list is shuffled fresh per render. Grading is
// unaffected: the engine always compares against the stored answer key.
// Unparsable payloads yield no options rather than an error.
func (h *Handler) optionsForPlay(raw json.RawMessage, randomise bool) []string {
	if len(raw) == 0 {
		return nil
	}
	var options []string
	if err := json.Unmarshal(raw, &options); err != nil {
		return nil
	}
	if randomise && len(options) > 1 {
		h.mu.Lock()
		h.rnd.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})
		h.mu.Unlock()
	}
	return options
}
