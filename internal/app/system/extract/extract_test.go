package extract_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tenderinsight/hub/internal/app/system/extract"
)

// buildDOCX assembles a minimal DOCX container with the given paragraphs.
func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<p><r><t>")
		body.WriteString(p)
		body.WriteString("</t></r></p>")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document.xml: %v", err)
	}
	if _, err := w.Write([]byte("<document><body>" + body.String() + "</body></document>")); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestFromDOCX(t *testing.T) {
	data := buildDOCX(t, "Tender for road maintenance.", "CIDB Grade 4 required.")

	text, err := extract.FromDOCX(data)
	if err != nil {
		t.Fatalf("FromDOCX failed: %v", err)
	}
	if !strings.Contains(text, "road maintenance") {
		t.Errorf("text = %q, want first paragraph content", text)
	}
	if !strings.Contains(text, "CIDB Grade 4") {
		t.Errorf("text = %q, want second paragraph content", text)
	}
}

func TestFromDOCX_NotAContainer(t *testing.T) {
	if _, err := extract.FromDOCX([]byte("plain text, not a zip")); err == nil {
		t.Fatal("expected error for a non-zip payload")
	}
}

func TestFromDOCX_MissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("other.txt")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	w.Write([]byte("hello"))
	zw.Close()

	if _, err := extract.FromDOCX(buf.Bytes()); err == nil {
		t.Fatal("expected error when word/document.xml is absent")
	}
}

func TestFromZIP_ExtractsSupportedEntries(t *testing.T) {
	inner := buildDOCX(t, "Inner document content.")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("docs/spec.docx")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	w.Write(inner)
	// Unsupported entries are skipped, not fatal.
	w2, err := zw.Create("readme.txt")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	w2.Write([]byte("ignore me"))
	zw.Close()

	text, err := extract.FromZIP(buf.Bytes())
	if err != nil {
		t.Fatalf("FromZIP failed: %v", err)
	}
	if !strings.Contains(text, "Inner document content.") {
		t.Errorf("text = %q, want inner docx content", text)
	}
	if strings.Contains(text, "ignore me") {
		t.Errorf("text = %q, should not contain the txt entry", text)
	}
}

func TestFromUpload_RoutesByExtension(t *testing.T) {
	docx := buildDOCX(t, "Routed by extension.")

	text, err := extract.FromUpload("Tender Pack.DOCX", docx)
	if err != nil {
		t.Fatalf("FromUpload failed: %v", err)
	}
	if !strings.Contains(text, "Routed by extension.") {
		t.Errorf("text = %q, want docx content", text)
	}
}

func TestFromUpload_Unsupported(t *testing.T) {
	for _, name := range []string{"notes.txt", "data.csv", "noextension"} {
		_, err := extract.FromUpload(name, []byte("x"))
		if !errors.Is(err, extract.ErrUnsupportedFormat) {
			t.Errorf("%s: err = %v, want ErrUnsupportedFormat", name, err)
		}
	}
}
