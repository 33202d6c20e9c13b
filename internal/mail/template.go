// AngelaMos | 2026
// template.go

package mail

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.txt
var templateFS embed.FS

// Template names understood by Render.
const (
	TemplateConfirm       = "confirm"
	TemplateResetPassword = "reset_password"
	TemplateChangeEmail   = "change_email"
	TemplateNewUser       = "new_user"
)

type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("mail").
		Option("missingkey=zero").
		ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	return &Renderer{templates: tmpl}, nil
}

func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	tmpl := r.templates.Lookup(name + ".txt")
	if tmpl == nil {
		return "", fmt.Errorf("render mail: unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render mail %s: %w", name, err)
	}

	return buf.String(), nil
}
