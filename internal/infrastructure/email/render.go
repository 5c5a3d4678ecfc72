package email

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"ContentPilot/internal/domain"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// buildMIME composes a multipart/alternative message with a plain-text part
// and an HTML part rendered from the markdown content.
func buildMIME(from string, msg domain.Message) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.Recipient)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n", writer.Boundary())
	buf.WriteString("\r\n")

	plain, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=UTF-8"},
	})
	if err != nil {
		return nil, fmt.Errorf("create text part: %w", err)
	}
	if _, err := plain.Write([]byte(renderText(msg))); err != nil {
		return nil, fmt.Errorf("write text part: %w", err)
	}

	html, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=UTF-8"},
	})
	if err != nil {
		return nil, fmt.Errorf("create html part: %w", err)
	}
	rendered, err := renderHTML(msg)
	if err != nil {
		return nil, err
	}
	if _, err := html.Write([]byte(rendered)); err != nil {
		return nil, fmt.Errorf("write html part: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return buf.Bytes(), nil
}

func renderText(msg domain.Message) string {
	var sb strings.Builder
	sb.WriteString("ContentPilot - Generated Content\n")
	sb.WriteString("================================\n\n")
	fmt.Fprintf(&sb, "Topics: %s\n", strings.Join(msg.Topics, ", "))
	fmt.Fprintf(&sb, "Content Types: %s\n", msg.ContentTypes)
	fmt.Fprintf(&sb, "Generated: %s\n\n", generatedStamp(msg))
	sb.WriteString(msg.Content)
	sb.WriteString("\n")
	return sb.String()
}

// generatedStamp formats the generation instant of the message. A zero
// value falls back to the current time.
func generatedStamp(msg domain.Message) string {
	at := msg.GeneratedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return at.Format("January 2, 2006 at 3:04 PM")
}

func renderHTML(msg domain.Message) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(msg.Content), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"UTF-8\"></head>\n")
	sb.WriteString("<body style=\"font-family: sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px;\">\n")
	sb.WriteString("<h1 style=\"border-bottom: 2px solid #1E88E5; padding-bottom: 10px;\">ContentPilot</h1>\n")
	fmt.Fprintf(&sb, "<p><strong>Topics:</strong> %s<br>\n", strings.Join(msg.Topics, ", "))
	fmt.Fprintf(&sb, "<strong>Content Types:</strong> %s<br>\n", msg.ContentTypes)
	fmt.Fprintf(&sb, "<strong>Generated:</strong> %s</p>\n", generatedStamp(msg))
	sb.WriteString("<div>\n")
	sb.Write(body.Bytes())
	sb.WriteString("</div>\n</body>\n</html>\n")

	return sb.String(), nil
}
