package converter

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"ai-docchat-be/internal/apperr"
)

// PDFLoader extracts one document per page so page numbers survive into
// chunk metadata.
type PDFLoader struct{}

func (l *PDFLoader) CanHandle(ext string) bool {
	return ext == ".pdf"
}

func (l *PDFLoader) Load(path string) ([]Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf %s: %v", apperr.ErrConversion, path, err)
	}
	defer f.Close()

	var docs []Document
	fonts := make(map[string]*pdf.Font)
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("%w: extract pdf page %d of %s: %v", apperr.ErrConversion, pageNum, path, err)
		}
		docs = append(docs, Document{
			Content: text,
			Metadata: map[string]interface{}{
				"source": path,
				"page":   pageNum,
			},
		})
	}

	return docs, nil
}
