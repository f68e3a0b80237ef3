// Package email parses RFC 822 (.eml) messages into analyzable text.
// The analysis pipeline works on plain email text; this package lets
// the CLI accept raw message files exported from a mail client.
package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"strings"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
)

// Message is a parsed email.
type Message struct {
	From    string
	To      string
	Subject string
	Date    string
	Body    string
}

// ParseFile reads and parses an .eml file.
func ParseFile(path string) (*Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading email file %s: %v", domain.ErrInvalidRequest, path, err)
	}
	return Parse(data)
}

// Parse parses a raw RFC 822 message.
func Parse(raw []byte) (*Message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid email message: %v", domain.ErrInvalidRequest, err)
	}

	body, err := extractBody(msg)
	if err != nil {
		return nil, err
	}

	return &Message{
		From:    decodeHeader(msg.Header.Get("From")),
		To:      decodeHeader(msg.Header.Get("To")),
		Subject: decodeHeader(msg.Header.Get("Subject")),
		Date:    msg.Header.Get("Date"),
		Body:    strings.TrimSpace(body),
	}, nil
}

// AnalysisText renders the message as the text given to the analysis
// pipeline: headers first, then the body, matching the shape of a
// pasted email.
func (m *Message) AnalysisText() string {
	var b strings.Builder
	if m.From != "" {
		b.WriteString("From: ")
		b.WriteString(m.From)
		b.WriteString("\n")
	}
	if m.To != "" {
		b.WriteString("To: ")
		b.WriteString(m.To)
		b.WriteString("\n")
	}
	if m.Date != "" {
		b.WriteString("Date: ")
		b.WriteString(m.Date)
		b.WriteString("\n")
	}
	if m.Subject != "" {
		b.WriteString("Subject: ")
		b.WriteString(m.Subject)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.Body)
	return strings.TrimSpace(b.String())
}

// decodeHeader decodes RFC 2047 encoded headers.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// extractBody extracts the text content from an email message.
func extractBody(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		body, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return "", fmt.Errorf("%w: unreadable email body", domain.ErrInvalidRequest)
		}
		return string(body), nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return extractMultipartBody(msg.Body, params["boundary"])
	}

	body, err := io.ReadAll(decodeTransfer(msg.Body, msg.Header.Get("Content-Transfer-Encoding")))
	if err != nil {
		return "", fmt.Errorf("%w: unreadable email body", domain.ErrInvalidRequest)
	}
	if mediaType == "text/html" {
		return stripHTMLTags(string(body)), nil
	}
	return string(body), nil
}

// decodeTransfer reverses the Content-Transfer-Encoding so base64 and
// quoted-printable bodies reach the classifier as readable text.
func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// extractMultipartBody extracts text from multipart messages,
// preferring plain text parts over HTML.
func extractMultipartBody(r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", nil
	}

	mr := multipart.NewReader(r, boundary)
	var textParts []string
	var htmlParts []string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		mediaType, params, parseErr := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if parseErr != nil {
			mediaType = "application/octet-stream"
		}

		content, readErr := io.ReadAll(decodeTransfer(part, part.Header.Get("Content-Transfer-Encoding")))
		part.Close()
		if readErr != nil {
			continue
		}

		switch {
		case mediaType == "text/plain":
			textParts = append(textParts, string(content))
		case mediaType == "text/html":
			htmlParts = append(htmlParts, stripHTMLTags(string(content)))
		case strings.HasPrefix(mediaType, "multipart/"):
			nested, nestedErr := extractMultipartBody(bytes.NewReader(content), params["boundary"])
			if nestedErr == nil && nested != "" {
				textParts = append(textParts, nested)
			}
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n"), nil
	}
	if len(htmlParts) > 0 {
		return strings.Join(htmlParts, "\n"), nil
	}
	return "", nil
}

// stripHTMLTags removes HTML tags for basic text extraction.
func stripHTMLTags(html string) string {
	var result strings.Builder
	inTag := false

	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}

	var cleaned []string
	for _, line := range strings.Split(result.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
