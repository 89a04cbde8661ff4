package notify

import (
	"bytes"
	"html/template"
)

var emailTmpl = template.Must(template.New("email").Parse(`
{{define "fields"}}<table>{{range .}}<tr><th align="left">{{.Label}}</th><td>{{.Value}}</td></tr>{{end}}</table>{{end}}
{{define "submission"}}<h2>{{.Title}}</h2>{{template "fields" .Fields}}{{if .Body}}<p style="white-space:pre-wrap">{{.Body}}</p>{{end}}{{end}}
{{define "reset"}}<p>A password reset was requested for your admin account.</p><p><a href="{{.Link}}">Choose a new password</a></p><p>The link expires in one hour. Ignore this e-mail if you did not request it.</p>{{end}}
`))

// Field is a label/value row in a submission e-mail.
type Field struct {
	Label string
	Value string
}

// SubmissionHTML renders the inbox notification for a public submission.
// Values are HTML-escaped.
func SubmissionHTML(title string, fields []Field, body string) (string, error) {
	var buf bytes.Buffer
	err := emailTmpl.ExecuteTemplate(&buf, "submission", struct {
		Title  string
		Fields []Field
		Body   string
	}{title, fields, body})
	return buf.String(), err
}

// ResetHTML renders the password reset e-mail.
func ResetHTML(link string) (string, error) {
	var buf bytes.Buffer
	err := emailTmpl.ExecuteTemplate(&buf, "reset", struct{ Link string }{link})
	return buf.String(), err
}
