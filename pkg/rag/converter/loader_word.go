package converter

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"ai-docchat-be/internal/apperr"
)

// WordLoader extracts text from .docx archives by walking the
// word/document.xml markup. Paragraph boundaries become newlines.
type WordLoader struct{}

func (l *WordLoader) CanHandle(ext string) bool {
	return ext == ".doc" || ext == ".docx"
}

func (l *WordLoader) Load(path string) ([]Document, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open docx %s: %v", apperr.ErrConversion, path, err)
	}
	defer archive.Close()

	var docXML io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("%w: open document.xml in %s: %v", apperr.ErrConversion, path, err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("%w: %s has no word/document.xml", apperr.ErrConversion, path)
	}
	defer docXML.Close()

	content, err := extractDocxText(docXML)
	if err != nil {
		return nil, fmt.Errorf("%w: parse docx %s: %v", apperr.ErrConversion, path, err)
	}

	return []Document{{
		Content:  content,
		Metadata: map[string]interface{}{"source": path},
	}}, nil
}

func extractDocxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			case "tab":
				sb.WriteString("\t")
			}
		case xml.CharData:
			if inText {
				sb.Write(el)
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
