package email_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/superrichie/internal/email"
)

func TestMagicLinkEmail_ContainsLinkAndExpiry(t *testing.T) {
	const link = "http://localhost:8080/api/auth/verify?token=abc123"

	body, err := email.MagicLinkEmail(link, 15*time.Minute)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	// html/template escapes & but leaves ? and = alone in attribute values
	if !strings.Contains(body, `href="`+link+`"`) {
		t.Errorf("body does not contain href for link %q", link)
	}
	if !strings.Contains(body, "expire in 15 minutes") {
		t.Error("body does not mention the 15 minute expiry")
	}
}

func TestMagicLinkEmail_EscapesMarkupInLink(t *testing.T) {
	body, err := email.MagicLinkEmail(`http://x/verify?token="><script>alert(1)</script>`, time.Minute)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Error("link was not escaped")
	}
}
