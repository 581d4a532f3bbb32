// Package extract turns uploaded file bytes into plain text for indexing.
// Unknown extensions yield an empty string, never an error: ingestion must
// not fail because someone uploaded an unsupported format.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// Text extracts plain text from data according to the file extension
// (without the leading dot, case-insensitive). Image formats return ""
// because OCR runs as an external service during upload; by the time
// bytes reach this package an image has no extractable text.
func Text(data []byte, extension string) (string, error) {
	switch strings.ToLower(extension) {
	case "pdf":
		return fromPDF(data)
	case "docx":
		return fromDOCX(data)
	case "xlsx":
		return fromXLSX(data)
	case "txt", "md", "csv":
		return string(data), nil
	case "png", "jpg", "jpeg":
		return "", nil
	default:
		return "", nil
	}
}

func fromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", fmt.Errorf("copying pdf text: %w", err)
	}
	return sb.String(), nil
}

// fromDOCX reads word/document.xml out of the docx zip container and
// collects the text runs, one line per paragraph.
func fromDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening docx container: %w", err)
	}

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("opening document.xml: %w", err)
			}
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx has no word/document.xml")
	}
	defer doc.Close()

	dec := xml.NewDecoder(doc)
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// fromXLSX renders every sheet as comma-separated lines.
func fromXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("reading sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			sb.WriteString(strings.Join(row, ","))
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
