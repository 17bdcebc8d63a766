package resume

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// MaxDocumentBytes caps uploaded resume documents.
const MaxDocumentBytes = 5 * 1024 * 1024

// ExtractText returns the plain text of an uploaded resume. PDFs are decoded page by page;
// UTF-8 text documents are returned as-is.
func ExtractText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ExtractError{Message: "document is empty"}
	}
	if len(data) > MaxDocumentBytes {
		return "", &ExtractError{Message: "document exceeds 5MB limit"}
	}

	if bytes.HasPrefix(data, []byte("%PDF")) {
		return extractPDF(data)
	}

	contentType := http.DetectContentType(data)
	if strings.HasPrefix(contentType, "text/") && utf8.Valid(data) {
		return string(data), nil
	}
	return "", &ExtractError{Message: "unsupported document type " + contentType}
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractError{Message: "failed to open PDF", Cause: err}
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", &ExtractError{Message: "failed to read PDF text", Cause: err}
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", &ExtractError{Message: "failed to read PDF text", Cause: err}
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", &ExtractError{Message: "PDF contains no extractable text"}
	}
	return text, nil
}
