package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RenderEmployeeBadge produces a single A4 page with the employee's full
// name as a bold heading. The document is rendered entirely in memory; no
// temporary file is involved.
func RenderEmployeeBadge(fullName string) ([]byte, error) {
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetCompression(false)
	doc.AddPage()
	doc.SetFont("Helvetica", "B", 20)
	doc.Text(100, 100, "Employee: "+fullName)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
