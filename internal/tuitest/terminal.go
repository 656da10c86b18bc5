package tuitest

import (
	"bytes"
	"io"
)

// terminalResponder answers the capability queries termenv and bubbletea
// send on startup; without replies they block until their own timeout.
type terminalResponder struct {
	w       io.Writer
	pending []byte
}

type termQuery struct {
	query, reply string
}

var termQueries = []termQuery{
	{"\x1b[6n", "\x1b[1;1R"},
	{"\x1b]10;?\x07", "\x1b]10;rgb:dddd/dddd/dddd\x07"},
	{"\x1b]10;?\x1b\\", "\x1b]10;rgb:dddd/dddd/dddd\x1b\\"},
	{"\x1b]11;?\x07", "\x1b]11;rgb:1111/1111/1111\x07"},
	{"\x1b]11;?\x1b\\", "\x1b]11;rgb:1111/1111/1111\x1b\\"},
}

const responderTail = 64

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w}
}

func (tr *terminalResponder) Process(chunk []byte) {
	tr.pending = append(tr.pending, chunk...)
	for tr.answerNext() {
	}
	// Keep a short tail so a query split across reads is still seen.
	if len(tr.pending) > 4*responderTail {
		tr.pending = append([]byte(nil), tr.pending[len(tr.pending)-responderTail:]...)
	}
}

// answerNext replies to the earliest query in the buffer and drops
// everything up to it.
func (tr *terminalResponder) answerNext() bool {
	best, at := -1, -1
	for i, q := range termQueries {
		idx := bytes.Index(tr.pending, []byte(q.query))
		if idx >= 0 && (at < 0 || idx < at) {
			best, at = i, idx
		}
	}
	if best < 0 {
		return false
	}
	q := termQueries[best]
	tr.pending = tr.pending[at+len(q.query):]
	_, _ = io.WriteString(tr.w, q.reply)
	return true
}
