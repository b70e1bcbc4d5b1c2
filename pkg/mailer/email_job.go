package mailer

// EmailJob is the queue payload consumed by cmd/email_worker. A job carries
// either a prerendered Subject/Text/HTML or a Template name ("welcome",
// "reset_password") plus Data; the worker renders templates at delivery time.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
