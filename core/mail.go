package core

import (
	"fmt"
	htmltmpl "html/template"
	"net/mail"
	"path/filepath"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

var (
	templates tmplCache
	tmplInit  sync.Once
)

type (
	tmplCacheEntry map[string]interface{}    // {ext: *Template}
	tmplCache      map[string]tmplCacheEntry // {name: tmplCacheEntry}

	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// ParseEmailTemplates parses all templates under <root>/templates/email once.
// Both .txt and .html variants are cached under the template's base name.
func ParseEmailTemplates(conf *Config, logger Logger) {
	tmplInit.Do(func() {
		templates = make(tmplCache)

		dir := filepath.Join(Getwd(), "templates", "email")
		for _, ext := range []string{".txt", ".html"} {
			matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
			if err != nil {
				logger.Fatal(fmt.Sprintf("globbing email templates: %v", err), err)
			}
			for _, match := range matches {
				name := strings.TrimSuffix(filepath.Base(match), ext)
				entry, ok := templates[name]
				if !ok {
					entry = make(tmplCacheEntry)
					templates[name] = entry
				}
				switch ext {
				case ".txt":
					t, err := texttmpl.ParseFiles(match)
					if err != nil {
						logger.Fatal(fmt.Sprintf("parsing %s: %v", match, err), err)
					}
					entry[ext] = t
				case ".html":
					t, err := htmltmpl.ParseFiles(match)
					if err != nil {
						logger.Fatal(fmt.Sprintf("parsing %s: %v", match, err), err)
					}
					entry[ext] = t
				}
			}
		}
	})
}

func (m *EmailMessage) contextData(conf *Config) ContextData {
	return ContextData{
		FrontendBaseURL: conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}
}

func (m *EmailMessage) template(ext string) (interface{}, bool) {
	entry, ok := templates[m.TemplateName]
	if !ok {
		return nil, false
	}
	t, ok := entry[ext]
	return t, ok
}

// Render resolves TextContent (and HTMLContent when an .html template exists)
// from either BodyStr or the cached templates.
func (m *EmailMessage) Render(conf *Config) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}

	data := m.contextData(conf)

	if t, ok := m.template(".txt"); ok {
		sb := new(strings.Builder)
		if err := t.(*texttmpl.Template).Execute(sb, data); err != nil {
			return errors.Wrapf(err, "executing %s.txt", m.TemplateName)
		}
		m.TextContent = sb.String()
	}
	if t, ok := m.template(".html"); ok {
		sb := new(strings.Builder)
		if err := t.(*htmltmpl.Template).Execute(sb, data); err != nil {
			return errors.Wrapf(err, "executing %s.html", m.TemplateName)
		}
		m.HTMLContent = sb.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To) > 0 || len(m.Cc) > 0 || len(m.Bcc) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != "" || m.HTMLContent != ""
}
