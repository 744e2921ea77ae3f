package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const MagicLinkSubject = "Your SuperRichie Magic Link"

var magicLinkTmpl = template.Must(template.New("magic_link").Parse(`<!DOCTYPE html>
<html>
  <head>
    <style>
      body { background-color: #000000; color: #00ff00; font-family: 'Courier New', monospace; padding: 40px; }
      .container { max-width: 600px; margin: 0 auto; border: 2px solid #00ff00; padding: 40px; }
      h1 { text-shadow: 0 0 10px #00ff00; }
      .button { display: inline-block; background-color: #00ff00; color: #000000; padding: 15px 30px; text-decoration: none; font-weight: bold; margin: 20px 0; }
      .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #00ff00; font-size: 12px; color: #00cc00; }
    </style>
  </head>
  <body>
    <div class="container">
      <h1>SuperRichie Magic Link</h1>
      <p>You're almost in! Click the button below to sign in to SuperRichie.</p>
      <a href="{{.Link}}" class="button">SIGN IN TO SUPERRICHIE &rarr;</a>
      <p>Or copy and paste this link into your browser:</p>
      <p style="word-break: break-all; color: #66ff66;">{{.Link}}</p>
      <div class="footer">
        <p>This link will expire in {{.ExpiresIn}}.</p>
        <p>If you didn't request this email, you can safely ignore it.</p>
      </div>
    </div>
  </body>
</html>
`))

// MagicLinkEmail renders the sign-in email for link. ttl is shown to the
// reader in whole minutes.
func MagicLinkEmail(link string, ttl time.Duration) (string, error) {
	data := struct {
		Link      string
		ExpiresIn string
	}{
		Link:      link,
		ExpiresIn: fmt.Sprintf("%d minutes", int(ttl.Minutes())),
	}

	var buf bytes.Buffer
	if err := magicLinkTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render magic link email: %w", err)
	}
	return buf.String(), nil
}
