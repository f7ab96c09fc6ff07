package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/linskybing/regscan/internal/domain/image"
)

// Prompt asks a y/n question on a terminal and approves deletion plans.
type Prompt struct {
	in      *bufio.Reader
	out     io.Writer
	printer *Printer
}

func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out, printer: NewPrinter(out)}
}

// Ask returns true only for an answer of "y", ignoring case and whitespace.
// End of input counts as no.
func (p *Prompt) Ask(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s (y/n): ", question)
	answer, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
}

// Confirm shows the plan and asks whether to delete it.
func (p *Prompt) Confirm(plan []image.NeverPulledSummary) (bool, error) {
	p.printer.NeverPulled(plan)
	return p.Ask("Do you want to delete these images?")
}
