package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Mail is one outgoing export email.
type Mail struct {
	To             string
	Subject        string
	Text           string
	AttachmentName string
	Attachment     []byte
}

// Mailer delivers export emails and returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, m Mail) (string, error)
}

// SESAPI is the subset of *sesv2.Client the mailer uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends raw MIME messages through SES v2.
type SESMailer struct {
	client SESAPI
	from   mail.Address
}

// NewSESMailer creates a mailer sending from fromName <fromEmail>.
func NewSESMailer(client SESAPI, fromEmail, fromName string) *SESMailer {
	return &SESMailer{client: client, from: mail.Address{Name: fromName, Address: fromEmail}}
}

func (s *SESMailer) Send(ctx context.Context, m Mail) (string, error) {
	if s.from.Address == "" {
		return "", errors.New("ses mailer: no from address configured")
	}
	raw, err := buildMIME(s.from, m)
	if err != nil {
		return "", err
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from.String()),
		Destination:      &types.Destination{ToAddresses: []string{m.To}},
		Content:          &types.EmailContent{Raw: &types.RawMessage{Data: raw}},
		EmailTags: []types.MessageTag{
			{Name: aws.String("kind"), Value: aws.String("playlist_export")},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ses send: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

func buildMIME(from mail.Address, m Mail) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", m.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", w.Boundary())

	text, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(m.Text)); err != nil {
		return nil, err
	}

	if len(m.Attachment) > 0 {
		att, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"application/json"},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": m.AttachmentName})},
		})
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(m.Attachment)
		for len(encoded) > 0 {
			n := min(len(encoded), 76)
			if _, err := io.WriteString(att, encoded[:n]+"\r\n"); err != nil {
				return nil, err
			}
			encoded = encoded[n:]
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
