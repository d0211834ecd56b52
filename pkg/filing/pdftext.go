package filing

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ReadPDF returns the text layer of a PDF, one slice of lines per page.
// Pages without a text layer come back empty.
func ReadPDF(data []byte) ([][]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf reader: %w", err)
	}
	return readPages(r)
}

// ReadPDFFile is ReadPDF for a file on disk.
func ReadPDFFile(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	pages, err := ReadPDF(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pages, nil
}

func readPages(r *pdf.Reader) ([][]string, error) {
	n := r.NumPage()
	pages := make([][]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("pdf page %d: %w", i, err)
		}
		var lines []string
		for _, l := range strings.Split(text, "\n") {
			if l = strings.TrimRight(l, " \t\r"); l != "" {
				lines = append(lines, l)
			}
		}
		pages = append(pages, lines)
	}
	return pages, nil
}
