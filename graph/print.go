package graph

import (
	"fmt"
	"io"
	"time"
)

// Printer writes up to N records to W, one per line, then stops the scan.
type Printer[E any] struct {
	W      io.Writer
	N      int
	Format func(e E) string
}

func (p *Printer[E]) Visit(e E) bool {
	if p.N <= 0 {
		return false
	}
	fmt.Fprintln(p.W, p.Format(e))
	p.N--
	return p.N > 0
}

func NodePrinter(w io.Writer, n int) *Printer[*Node] {
	return &Printer[*Node]{W: w, N: n, Format: FormatNode}
}

func EdgePrinter(w io.Writer, n int) *Printer[*Edge] {
	return &Printer[*Edge]{W: w, N: n, Format: FormatEdge}
}

func FormatNode(n *Node) string {
	s := fmt.Sprintf("node %d %s [%s#%d] created %s", n.ID, n.Name, n.Type, n.TypeCode, n.Created().UTC().Format(time.RFC3339))
	if n.Description != "" {
		s += ": " + n.Description
	}
	return s
}

func FormatEdge(e *Edge) string {
	s := fmt.Sprintf("edge %d %s (%d -> %d) [%s#%d] created %s", e.ID, e.Name, e.Head, e.Tail, e.Type, e.TypeCode, e.Created().UTC().Format(time.RFC3339))
	if e.Description != "" {
		s += ": " + e.Description
	}
	return s
}
