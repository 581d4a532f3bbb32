package extract

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestText_PlainFormats(t *testing.T) {
	got, err := Text([]byte("hello world"), "txt")
	if err != nil {
		t.Fatalf("Text(txt): %v", err)
	}
	if got != "hello world" {
		t.Errorf("Text(txt) = %q", got)
	}
}

func TestText_UnknownExtension(t *testing.T) {
	for _, ext := range []string{"exe", "zip", ""} {
		got, err := Text([]byte{0x00, 0x01}, ext)
		if err != nil {
			t.Errorf("Text(%q) err = %v, want nil", ext, err)
		}
		if got != "" {
			t.Errorf("Text(%q) = %q, want empty", ext, got)
		}
	}
}

func TestText_ImageFormatsYieldEmpty(t *testing.T) {
	for _, ext := range []string{"png", "JPG", "jpeg"} {
		got, err := Text([]byte("not really an image"), ext)
		if err != nil || got != "" {
			t.Errorf("Text(%q) = (%q, %v), want (\"\", nil)", ext, got, err)
		}
	}
}

// makeDOCX builds a minimal docx container with the given paragraphs.
func makeDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating document.xml: %v", err)
	}
	w.Write([]byte(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`))
	for _, p := range paragraphs {
		w.Write([]byte(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`))
	}
	w.Write([]byte(`</w:body></w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func TestText_DOCX(t *testing.T) {
	data := makeDOCX(t, "4.2 Termination", "Thirty days notice.")
	got, err := Text(data, "docx")
	if err != nil {
		t.Fatalf("Text(docx): %v", err)
	}
	want := "4.2 Termination\nThirty days notice."
	if got != want {
		t.Errorf("Text(docx) = %q, want %q", got, want)
	}
}

func TestText_DOCXWithoutDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("other.xml")
	w.Write([]byte("<x/>"))
	zw.Close()

	if _, err := Text(buf.Bytes(), "docx"); err == nil {
		t.Error("expected error for docx without document.xml")
	}
}

func TestText_CorruptPDF(t *testing.T) {
	if _, err := Text([]byte("definitely not a pdf"), "pdf"); err == nil {
		t.Error("expected error for corrupt pdf")
	}
}
