package portal

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/jlpinilla/MediaEdu/identity"
	"github.com/jlpinilla/MediaEdu/record"
)

// The configuration page. Secrets are never echoed back: the password
// inputs render empty and an untouched submission leaves them unchanged.
const configPage = `<!DOCTYPE html>
<html>
<head><title>MediaEdu node</title></head>
<body>
<h1>MediaEdu configuration</h1>
<p>Device: {{.Label}} ({{.Address}})<br>Clock: {{.ClockNow}}</p>
<form action="/guardar" method="POST">
<h2>Network</h2>
<label>Network name <input type="text" name="ssid" value="{{.NetworkName}}"></label><br>
<label>Network password <input type="password" name="password" value=""></label><br>
<h2>Install</h2>
<label>Location <input type="text" name="ubicacion" value="{{.SiteLabel}}"></label><br>
<label>Date and time <input type="datetime-local" name="fechaHora"></label><br>
<h2>Upload</h2>
<label>Server <input type="text" name="serverMysql" value="{{.UploadHost}}"></label><br>
<label>User <input type="text" name="userMysql" value="{{.UploadUser}}"></label><br>
<label>Password <input type="password" name="passMysql" value=""></label><br>
<label>Database <input type="text" name="dbMysql" value="{{.UploadDatabase}}"></label><br>
<h2>Upload window</h2>
<label>From <input type="time" name="horaInicio" value="{{.WindowStart}}"></label>
<label>To <input type="time" name="horaFin" value="{{.WindowEnd}}"></label><br>
<input type="submit" value="Save">
</form>
</body>
</html>
`

const confirmPage = `<!DOCTYPE html>
<html>
<head><title>MediaEdu node</title></head>
<body>
<h1>Configuration saved</h1>
<p>The node will now join the configured network.</p>
</body>
</html>
`

var configTmpl = template.Must(template.New("config").Parse(configPage))

type pageData struct {
	Label          string
	Address        string
	ClockNow       string
	NetworkName    string
	SiteLabel      string
	UploadHost     string
	UploadUser     string
	UploadDatabase string
	WindowStart    string
	WindowEnd      string
}

func renderConfigPage(rec *record.Record, id identity.Identity, clockNow string) (string, error) {
	d := pageData{
		Label:          id.Label,
		Address:        id.Address,
		ClockNow:       clockNow,
		NetworkName:    rec.NetworkName.String(),
		SiteLabel:      rec.SiteLabel.String(),
		UploadHost:     rec.UploadHost.String(),
		UploadUser:     rec.UploadUser.String(),
		UploadDatabase: rec.UploadDatabase.String(),
		WindowStart:    fmt.Sprintf("%02d:%02d", rec.Window.StartHour, rec.Window.StartMinute),
		WindowEnd:      fmt.Sprintf("%02d:%02d", rec.Window.EndHour, rec.Window.EndMinute),
	}
	var b strings.Builder
	if err := configTmpl.Execute(&b, d); err != nil {
		return "", err
	}
	return b.String(), nil
}
