package arxiv

import "strconv"

// Paper is one candidate returned by a search. Records are created by the
// feed parser and never modified afterwards.
type Paper struct {
	// ID is the 1-based position of the paper inside the search result it came from.
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	// PaperID is the source reference, usually an abs URL such as
	// http://arxiv.org/abs/2301.12345v1.
	PaperID string `json:"paper_id"`
	Link    string `json:"link,omitempty"`
}

// ArxivID returns the short identifier embedded in PaperID, if any.
func (p Paper) ArxivID() (string, bool) {
	return ExtractID(p.PaperID)
}

// Key identifies the paper outside of a single result list.
func (p Paper) Key() string {
	if id, ok := p.ArxivID(); ok {
		return id
	}
	if p.PaperID != "" {
		return p.PaperID
	}
	return "paper-" + strconv.Itoa(p.ID)
}

// Without returns papers minus any entry sharing the excluded ID.
func Without(papers []Paper, excluded Paper) []Paper {
	out := make([]Paper, 0, len(papers))
	for _, p := range papers {
		if p.ID == excluded.ID {
			continue
		}
		out = append(out, p)
	}
	return out
}
