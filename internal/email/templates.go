package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// Mail bodies are small enough to keep inline; the portal frontend owns the
// rich layouts.
var templates = template.Must(template.New("email").Parse(`
{{define "welcome"}}
<h2>¡Bienvenido, {{.Name}}!</h2>
<p>Tu cuenta en el portal de clientes ha sido creada. Desde ahí puedes dar
seguimiento a tus cotizaciones y proyectos.</p>
{{if .PortalURL}}<p><a href="{{.PortalURL}}/dashboard">Entrar al portal</a></p>{{end}}
{{end}}

{{define "quote_received"}}
<h2>Hemos recibido tu cotización</h2>
<p>Hola {{.Name}},</p>
<p>Tu solicitud de <strong>{{.ServiceLabel}}</strong> (paquete {{.PackageType}})
fue registrada con el folio <strong>{{.QuoteID}}</strong>.</p>
{{if .TotalPrice}}<p>Total estimado: <strong>{{.TotalPrice}} {{.Currency}}</strong>
con un tiempo de entrega aproximado de {{.TimelineDays}} días.</p>{{end}}
<p>Nuestro equipo la revisará y te contactará pronto.</p>
{{if .PortalURL}}<p><a href="{{.PortalURL}}/dashboard/quotes/{{.QuoteID}}">Ver tu cotización</a></p>{{end}}
{{end}}

{{define "quote_status"}}
<h2>Actualización de tu cotización</h2>
<p>Hola {{.Name}},</p>
<p>Tu cotización <strong>{{.QuoteID}}</strong> de {{.ServiceLabel}} cambió a
estado <strong>{{.NewStatus}}</strong>.</p>
{{if .ProjectTitle}}<p>Se creó el proyecto <strong>{{.ProjectTitle}}</strong>;
puedes seguir su avance desde el portal.</p>{{end}}
{{if .PortalURL}}<p><a href="{{.PortalURL}}/dashboard/quotes/{{.QuoteID}}">Ver el detalle</a></p>{{end}}
{{end}}

{{define "contact_ack"}}
<h2>Gracias por escribirnos</h2>
<p>Hola {{.Name}},</p>
<p>Recibimos tu mensaje y te responderemos a la brevedad.</p>
{{end}}
`))

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}

var subjects = map[string]string{
	"welcome":        "Bienvenido al portal de clientes",
	"quote_received": "Hemos recibido tu cotización",
	"quote_status":   "Actualización de tu cotización",
	"contact_ack":    "Hemos recibido tu mensaje",
}
