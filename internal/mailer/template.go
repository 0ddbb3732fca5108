package mailer

import (
	"bytes"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
)

// LayoutData feeds the club-branded email layout shared by every outbound message.
type LayoutData struct {
	Title      string
	Message    template.HTML
	Rows       []InfoRow
	ButtonURL  string
	ButtonText string
	LinkHint   string
	Code       string
	SiteURL    string
	Year       int
}

type InfoRow struct {
	Label string
	Value string
}

var layoutTmpl = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #f4f4f5; margin: 0; padding: 0; }
    .container { max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
    .header { background-image: url('{{.SiteURL}}/panorama.jpg'); background-size: cover; background-position: center; height: 160px; position: relative; background-color: #2563eb; }
    .header-overlay { background: linear-gradient(to bottom, rgba(0,0,0,0.2), rgba(0,0,0,0.6)); position: absolute; inset: 0; }
    .header-text { position: absolute; bottom: 20px; left: 30px; color: white; font-size: 24px; font-weight: bold; text-shadow: 0 2px 4px rgba(0,0,0,0.3); }
    .content { padding: 40px 30px; color: #333333; }
    .h1 { font-size: 20px; font-weight: 700; color: #1e293b; margin-top: 0; }
    .text { color: #475569; line-height: 1.6; margin-bottom: 24px; }
    .info-box { background-color: #f8fafc; border: 1px solid #e2e8f0; border-radius: 8px; padding: 20px; margin: 20px 0; }
    .info-row { margin-bottom: 10px; font-size: 14px; }
    .label { color: #64748b; font-weight: 600; width: 80px; display: inline-block; }
    .value { color: #0f172a; font-weight: 500; }
    .code-box { background: #f1f5f9; padding: 15px; border-radius: 8px; font-family: monospace; font-size: 24px; letter-spacing: 5px; text-align: center; color: #0f172a; margin: 20px 0; font-weight: bold; }
    .btn { display: inline-block; background-color: #2563eb; color: #ffffff !important; padding: 12px 24px; border-radius: 8px; text-decoration: none; font-weight: 600; text-align: center; margin-top: 10px; }
    .footer { background-color: #f1f5f9; padding: 20px; text-align: center; font-size: 12px; color: #64748b; }
    .link { color: #2563eb; word-break: break-all; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="header-overlay"></div>
      <div class="header-text">Les Joyeux Marcheurs</div>
    </div>
    <div class="content">
      <p class="h1">{{.Title}}</p>
      <p class="text">{{.Message}}</p>
      {{if .Rows}}<div class="info-box">
        {{range .Rows}}<div class="info-row"><span class="label">{{.Label}} :</span> <span class="value">{{.Value}}</span></div>
        {{end}}</div>{{end}}
      {{if .ButtonURL}}<div style="text-align: center; margin: 30px 0;">
        <a href="{{.ButtonURL}}" class="btn">{{.ButtonText}}</a>
      </div>{{end}}
      {{if .Code}}<p class="text" style="text-align: center; font-size: 14px;">Ou utilisez ce code de v&eacute;rification si demand&eacute; :</p>
      <div class="code-box">{{.Code}}</div>{{end}}
      {{if .LinkHint}}<p class="text" style="font-size: 13px; color: #94a3b8; margin-top: 30px;">
        Si le bouton ne fonctionne pas, copiez ce lien :<br>
        <span class="link">{{.LinkHint}}</span>
      </p>{{end}}
    </div>
    <div class="footer">
      Ceci est un message automatique.<br>
      &copy; {{.Year}} Joyeux marcheurs de Ch&acirc;teauneuf-le-rouge
    </div>
  </div>
</body>
</html>`))

// Render produces the final HTML body for a message.
func Render(data LayoutData) (string, error) {
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := layoutTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderMarkdown converts a hike description to embeddable HTML.
func RenderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
