package sniffer

import (
	"bytes"
	"io"
	"mime"
	"strings"

	"github.com/cockroachdb/errors"
)

type DocumentType string

const (
	TypePDF  DocumentType = "pdf"
	TypeDOC  DocumentType = "doc"
	TypeDOCX DocumentType = "docx"
)

var (
	ErrUnknownType  = errors.New("unsupported document type")
	ErrTypeMismatch = errors.New("declared content type does not match file contents")
)

type Result struct {
	Type      DocumentType
	MIME      string
	Extension string
}

var (
	pdfResult  = Result{Type: TypePDF, MIME: "application/pdf", Extension: ".pdf"}
	docResult  = Result{Type: TypeDOC, MIME: "application/msword", Extension: ".doc"}
	docxResult = Result{Type: TypeDOCX, MIME: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Extension: ".docx"}
)

// HeadSize is how much of a file Detect inspects. Word's own zip entries usually
// follow [Content_Types].xml and _rels/.rels, so a DOCX needs more than a magic number.
const HeadSize = 8 << 10

// Detect reads up to HeadSize bytes from r and classifies them. The consumed head is
// returned so the caller can stitch it back in front of the remaining stream.
func Detect(r io.Reader) (Result, []byte, error) {
	head := make([]byte, HeadSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	head = head[:n]

	result, err := DetectHead(head)
	return result, head, err
}

func DetectHead(head []byte) (Result, error) {
	switch {
	case isPDF(head):
		return pdfResult, nil
	case isOLE(head):
		return docResult, nil
	case isOOXML(head):
		return docxResult, nil
	}
	return Result{}, ErrUnknownType
}

func isPDF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("%PDF-"))
}

// Legacy Word files are OLE compound documents.
func isOLE(head []byte) bool {
	return bytes.HasPrefix(head, []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1})
}

func isOOXML(head []byte) bool {
	if !bytes.HasPrefix(head, []byte{'P', 'K', 0x03, 0x04}) {
		return false
	}
	// Spreadsheets and presentations share the container; only a word/ part makes it a document.
	return bytes.Contains(head, []byte("word/"))
}

// CheckDeclared verifies a client-supplied Content-Type against the sniffed result.
// An empty or generic declaration is accepted.
func CheckDeclared(declared string, result Result) error {
	mediaType := NormalizeMIME(declared)
	switch mediaType {
	case "", "application/octet-stream":
		return nil
	case result.MIME:
		return nil
	}
	return ErrTypeMismatch
}

func NormalizeMIME(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		if idx := strings.Index(contentType, ";"); idx >= 0 {
			return strings.ToLower(strings.TrimSpace(contentType[:idx]))
		}
		return strings.ToLower(contentType)
	}
	return mediaType
}
