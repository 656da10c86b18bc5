package arxiv

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyDocument is returned when the feed body holds no XML at all.
var ErrEmptyDocument = errors.New("arxiv: empty feed document")

// ParseError reports a feed document that is not well-formed XML.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("arxiv: malformed feed: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingFieldError reports an entry lacking one of title, summary or id.
type MissingFieldError struct {
	// Index is the 0-based position of the entry in the document.
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("arxiv: feed entry %d has no <%s> element", e.Index, e.Field)
}

type feedDocument struct {
	Entries []feedEntry `xml:"entry"`
}

// feedEntry keeps, for each field, the text of the first descendant element
// with that name in document order, including text inside nested markup.
type feedEntry struct {
	ID      *string
	Title   *string
	Summary *string
}

func (e *feedEntry) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	_, err := e.collect(d)
	return err
}

// collect consumes tokens up to the end of the current element and returns
// all character data beneath it.
func (e *feedEntry) collect(d *xml.Decoder) (string, error) {
	var text strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			slot := e.field(t.Name.Local)
			var claimed *string
			if slot != nil && *slot == nil {
				claimed = new(string)
				*slot = claimed
			}
			inner, err := e.collect(d)
			if err != nil {
				return "", err
			}
			if claimed != nil {
				*claimed = inner
			}
			text.WriteString(inner)
		case xml.EndElement:
			return text.String(), nil
		}
	}
}

func (e *feedEntry) field(name string) **string {
	switch name {
	case "id":
		return &e.ID
	case "title":
		return &e.Title
	case "summary":
		return &e.Summary
	default:
		return nil
	}
}

// Parse converts an Atom search feed into papers numbered 1..N in document
// order. Title, summary and id text are kept verbatim, whitespace included.
// A document with no entries yields an empty slice and no error.
func Parse(data []byte) ([]Paper, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}
	return decodeFeed(bytes.NewReader(data))
}

// ParseOrEmpty parses data and discards any failure, returning an empty
// slice instead. Callers that need to tell "no results" from "bad feed"
// should use Parse.
func ParseOrEmpty(data []byte) []Paper {
	papers, err := Parse(data)
	if err != nil {
		return []Paper{}
	}
	return papers
}

func decodeFeed(r io.Reader) ([]Paper, error) {
	var doc feedDocument
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	// Decode stops at the end of the root element; anything after it that is
	// not whitespace or a comment means the document was not well formed.
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return nil, &ParseError{Err: errors.New("trailing data after root element")}
			}
		case xml.Comment, xml.ProcInst:
		default:
			return nil, &ParseError{Err: errors.New("multiple root elements")}
		}
	}

	papers := make([]Paper, 0, len(doc.Entries))
	for idx, entry := range doc.Entries {
		switch {
		case entry.Title == nil:
			return nil, &MissingFieldError{Index: idx, Field: "title"}
		case entry.Summary == nil:
			return nil, &MissingFieldError{Index: idx, Field: "summary"}
		case entry.ID == nil:
			return nil, &MissingFieldError{Index: idx, Field: "id"}
		}
		papers = append(papers, Paper{
			ID:      idx + 1,
			Title:   *entry.Title,
			Summary: *entry.Summary,
			PaperID: *entry.ID,
		})
	}
	return papers, nil
}
