package mailalert

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

// bodyText extracts a best-effort plain text body from raw RFC822 bytes.
// Multipart mails prefer their text/plain part; anything unreadable falls
// back to the raw bytes rather than dropping the alert.
func bodyText(raw []byte) string {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}
	body, _ := io.ReadAll(io.LimitReader(msg.Body, 4<<20))
	return textPart(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), body)
}

func textPart(ct, cte string, body []byte) string {
	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return string(decodeCTE(body, cte))
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return string(decodeCTE(body, cte))
		}

		mr := multipart.NewReader(bytes.NewReader(body), boundary)
		fallback := ""
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			pb, _ := io.ReadAll(io.LimitReader(p, 4<<20))
			got := textPart(p.Header.Get("Content-Type"), p.Header.Get("Content-Transfer-Encoding"), pb)
			if got == "" {
				continue
			}
			if strings.HasPrefix(strings.ToLower(p.Header.Get("Content-Type")), "text/plain") {
				return got
			}
			if fallback == "" {
				fallback = got
			}
		}
		return fallback
	}

	if mediaType == "" || strings.HasPrefix(mediaType, "text/") {
		return string(decodeCTE(body, cte))
	}
	return ""
}

func decodeCTE(b []byte, cte string) []byte {
	switch strings.ToLower(strings.TrimSpace(cte)) {
	case "quoted-printable":
		if d, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(b))); err == nil {
			return d
		}
	case "base64":
		compact := strings.Join(strings.Fields(string(b)), "")
		if d, err := base64.StdEncoding.DecodeString(compact); err == nil {
			return d
		}
	}
	return b
}
