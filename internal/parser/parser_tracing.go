package parser

import (
	"fmt"
	"io"
	"strings"
)

const traceIdentPlaceholder = "\t"

// SetTrace makes the parser write an indented BEGIN/END line to w for every
// parse function it enters and leaves. A nil writer turns tracing off.
func (p *Parser) SetTrace(w io.Writer) {
	p.tracer = w
	p.traceLevel = 0
}

func (p *Parser) tracePrint(msg string) {
	indent := strings.Repeat(traceIdentPlaceholder, p.traceLevel-1)
	fmt.Fprintf(p.tracer, "%s%s\n", indent, msg)
}

func (p *Parser) trace(msg string) string {
	if p.tracer == nil {
		return msg
	}
	p.traceLevel++
	p.tracePrint("BEGIN " + msg)
	return msg
}

func (p *Parser) untrace(msg string) {
	if p.tracer == nil {
		return
	}
	p.tracePrint("END " + msg)
	p.traceLevel--
}
