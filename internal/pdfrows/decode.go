package pdfrows

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Run is a contiguous piece of text at one position on a page.
type Run struct {
	Text string
	X    float64
	Y    float64
}

// Page holds the runs of one page in reading order: top to bottom, then
// left to right.
type Page struct {
	Number int
	Runs   []Run
}

// Decoder turns PDF bytes into positioned text runs. It lets us stub the
// PDF reader in tests.
type Decoder interface {
	Decode(blob []byte) ([]Page, error)
}

type pdfDecoder struct {
	runGap float64
}

// NewPDFDecoder returns a Decoder backed by ledongthuc/pdf. Glyphs on one line
// further apart than runGap start a new run.
func NewPDFDecoder(runGap float64) Decoder {
	if runGap <= 0 {
		runGap = DefaultRunGap
	}
	return &pdfDecoder{runGap: runGap}
}

func (d *pdfDecoder) Decode(blob []byte) (pages []Page, err error) {
	// the reader panics on some truncated xref tables
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf reader: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d text: %w", i, err)
		}
		pages = append(pages, Page{Number: i, Runs: d.runs(rows)})
	}
	return pages, nil
}

func (d *pdfDecoder) runs(rows pdf.Rows) []Run {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	var out []Run
	for _, row := range rows {
		glyphs := row.Content
		sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })

		var (
			sb   strings.Builder
			x    float64
			end  float64
			open bool
		)
		flush := func() {
			if open {
				out = append(out, Run{Text: sb.String(), X: x, Y: float64(row.Position)})
			}
			sb.Reset()
			open = false
		}
		for _, g := range glyphs {
			if open && g.X-end > d.runGap {
				flush()
			}
			if !open {
				x = g.X
				open = true
			}
			sb.WriteString(g.S)
			end = g.X + g.W
		}
		flush()
	}
	return out
}
