package email

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
)

const simpleEmail = `From: ceo@urgent-company-update.com
To: finance@company.com
Subject: Confidential Transfer
Date: Mon, 02 Jan 2006 15:04:05 -0700

Please wire $60,000 immediately and keep this quiet.
`

func TestParse_Simple(t *testing.T) {
	msg, err := Parse([]byte(simpleEmail))

	require.NoError(t, err)
	assert.Equal(t, "ceo@urgent-company-update.com", msg.From)
	assert.Equal(t, "finance@company.com", msg.To)
	assert.Equal(t, "Confidential Transfer", msg.Subject)
	assert.Equal(t, "Please wire $60,000 immediately and keep this quiet.", msg.Body)
}

func TestParse_EncodedSubject(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: =?UTF-8?Q?Wichtige_=C3=9Cberweisung?=\r\n" +
		"\r\n" +
		"Bitte sofort handeln.\r\n"

	msg, err := Parse([]byte(raw))

	require.NoError(t, err)
	assert.Equal(t, "Wichtige Überweisung", msg.Subject)
}

func TestParse_HTMLBody(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><body><p>Click <a href=\"http://evil.test\">here</a> to verify.</p></body></html>\r\n"

	msg, err := Parse([]byte(raw))

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Click here to verify.")
	assert.NotContains(t, msg.Body, "<p>")
}

func TestParse_MultipartPrefersPlainText(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Content-Type: multipart/alternative; boundary=\"BOUNDARY\"\r\n" +
		"\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<b>bold html version</b>\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"plain text version\r\n" +
		"--BOUNDARY--\r\n"

	msg, err := Parse([]byte(raw))

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "plain text version")
	assert.NotContains(t, msg.Body, "bold html version")
}

func TestParse_Base64Body(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"UGxlYXNlIHdpcmUgJDYwLDAwMCB0byB0aGUgYWNjb3VudCBiZWxvdyBiZWZvcmUgbm9vbiB0b2Rh\r\n" +
		"eS4=\r\n"

	msg, err := Parse([]byte(raw))

	require.NoError(t, err)
	assert.Equal(t, "Please wire $60,000 to the account below before noon today.", msg.Body)
}

func TestParse_QuotedPrintableBody(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"Urgent: wire =E2=82=AC9,500 to the vendor ac=\r\n" +
		"count today.\r\n"

	msg, err := Parse([]byte(raw))

	require.NoError(t, err)
	assert.Equal(t, "Urgent: wire €9,500 to the vendor account today.", msg.Body)
}

func TestParse_MultipartBase64Part(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Content-Type: multipart/alternative; boundary=\"BOUNDARY\"\r\n" +
		"\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"UGxlYXNlIHdpcmUgJDYwLDAwMCB0byB0aGUgYWNjb3VudCBiZWxvdyBiZWZvcmUgbm9vbiB0b2Rh\r\n" +
		"eS4=\r\n" +
		"--BOUNDARY--\r\n"

	msg, err := Parse([]byte(raw))

	require.NoError(t, err)
	assert.Equal(t, "Please wire $60,000 to the account below before noon today.", msg.Body)
}

func TestParse_NotAnEmail(t *testing.T) {
	_, err := Parse([]byte("complete nonsense without any headers at all"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.eml"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestParseFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msg.eml")
	require.NoError(t, os.WriteFile(path, []byte(simpleEmail), 0600))

	msg, err := ParseFile(path)

	require.NoError(t, err)
	assert.Equal(t, "Confidential Transfer", msg.Subject)
}

func TestMessage_AnalysisText(t *testing.T) {
	msg := &Message{
		From:    "ceo@urgent-company-update.com",
		To:      "finance@company.com",
		Subject: "Confidential Transfer",
		Date:    "Mon, 02 Jan 2006 15:04:05 -0700",
		Body:    "Please wire the funds.",
	}

	text := msg.AnalysisText()

	assert.Contains(t, text, "From: ceo@urgent-company-update.com")
	assert.Contains(t, text, "Subject: Confidential Transfer")
	assert.Contains(t, text, "Please wire the funds.")
	// Headers come before the body.
	assert.Less(t, 0, len(text))
	assert.Greater(t, len(text), len(msg.Body))
}

func TestMessage_AnalysisText_MinimalMessage(t *testing.T) {
	msg := &Message{Body: "just a body"}

	assert.Equal(t, "just a body", msg.AnalysisText())
}

func TestStripHTMLTags(t *testing.T) {
	assert.Equal(t, "hello world", stripHTMLTags("<p>hello world</p>"))
	assert.Equal(t, "line one\nline two", stripHTMLTags("<div>line one</div>\n<div>line two</div>"))
	assert.Equal(t, "plain", stripHTMLTags("plain"))
}
