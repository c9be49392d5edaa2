package contact

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// DefaultMailtoSubject is used in the fallback link when the visitor left the subject blank.
const DefaultMailtoSubject = "Contact from Portfolio"

// Launcher hands a mailto: URI to whatever opens the visitor's mail client.
type Launcher interface {
	Launch(ctx context.Context, uri string) error
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context, uri string) error

func (f LauncherFunc) Launch(ctx context.Context, uri string) error {
	return f(ctx, uri)
}

// MailtoURI builds the pre-filled fallback link for a submission.
func MailtoURI(address string, s Submission) string {
	subject := strings.TrimSpace(s.Subject)
	if subject == "" {
		subject = DefaultMailtoSubject
	}

	body := fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nService: %s\n\nMessage:\n%s",
		s.Name, s.Email, s.Phone, s.Service, s.Message)

	return "mailto:" + address + "?subject=" + encodeComponent(subject) + "&body=" + encodeComponent(body)
}

// encodeComponent escapes like a browser's encodeURIComponent: mail clients
// do not decode '+' as a space.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
