package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"strings"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names.
const (
	Welcome       = "welcome"
	ResetPassword = "reset_password"
)

var funcMap = htmpl.FuncMap{
	"now":        func() time.Time { return time.Now().UTC() },
	"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
	"upper":      strings.ToUpper,
}

// Subject returns the mail subject for a template name.
func Subject(name string) string {
	switch strings.ToLower(name) {
	case Welcome:
		return "Welcome to LMS"
	case ResetPassword:
		return "Reset Password"
	default:
		return "Notification"
	}
}

// RenderHTML renders the named template with data.
func RenderHTML(name string, data any) (string, error) {
	t, err := htmpl.New(name + ".tmpl").Funcs(funcMap).ParseFS(FS, name+".tmpl")
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}
