package notification

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/example/serenity-bookings/internal/application"
)

var confirmationHTML = template.Must(template.New("confirmation").Parse(`<html>
<body style="font-family: Georgia, serif; color: #2d2a32;">
  <h2>Votre réservation est confirmée</h2>
  <p>Bonjour {{.FirstName}},</p>
  <p>Votre séance <strong>{{.ServiceName}}</strong> est confirmée pour le <strong>{{.Date}}</strong> à <strong>{{.Time}}</strong>.</p>
  <p>Montant réglé : <strong>{{.Price}} €</strong></p>
  {{if .VisioLink}}<p>Lien de la séance : <a href="{{.VisioLink}}">{{.VisioLink}}</a></p>{{end}}
  <p>Vous pouvez retrouver votre réservation à tout moment avec votre lien personnel :<br>
  numéro de réservation <strong>{{.BookingID}}</strong>.</p>
  <p>À très bientôt,<br>Serenity</p>
</body>
</html>`))

var cancellationHTML = template.Must(template.New("cancellation").Parse(`<html>
<body style="font-family: Georgia, serif; color: #2d2a32;">
  <h2>Votre réservation a été annulée</h2>
  <p>Bonjour {{.FirstName}},</p>
  <p>Votre séance <strong>{{.ServiceName}}</strong> prévue le <strong>{{.Date}}</strong> à <strong>{{.Time}}</strong> a été annulée.</p>
  <p>Si vous avez déjà réglé cette séance, vous serez remboursé dans les meilleurs délais.</p>
  <p>N'hésitez pas à réserver un nouveau créneau sur notre site.</p>
  <p>Avec toute ma bienveillance,<br>Serenity</p>
</body>
</html>`))

type emailData struct {
	FirstName   string
	ServiceName string
	Date        string
	Time        string
	Price       string
	VisioLink   string
	BookingID   string
}

// Render builds the outbound message for a booking event. Unknown event kinds
// return ok=false and must be skipped by the caller.
func Render(event application.BookingEvent) (Message, bool) {
	data := emailData{
		FirstName:   event.Booking.FirstName,
		ServiceName: event.ServiceName,
		Date:        event.Booking.Date,
		Time:        event.Booking.Time,
		Price:       event.Booking.Price.StringFixed(2),
		BookingID:   event.Booking.ID,
	}
	if event.Booking.VisioLink != nil {
		data.VisioLink = *event.Booking.VisioLink
	}

	switch event.Kind {
	case application.EventBookingConfirmed:
		return Message{
			To:       event.Booking.Email,
			Subject:  fmt.Sprintf("Réservation confirmée — %s le %s à %s", data.ServiceName, data.Date, data.Time),
			TextBody: confirmationText(data),
			HTMLBody: renderHTML(confirmationHTML, data),
		}, true
	case application.EventBookingCancelled:
		return Message{
			To:       event.Booking.Email,
			Subject:  fmt.Sprintf("Réservation annulée — %s le %s", data.ServiceName, data.Date),
			TextBody: cancellationText(data),
			HTMLBody: renderHTML(cancellationHTML, data),
		}, true
	}
	return Message{}, false
}

func renderHTML(tmpl *template.Template, data emailData) string {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return ""
	}
	return sb.String()
}

func confirmationText(data emailData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Bonjour %s,\n\n", data.FirstName)
	fmt.Fprintf(&sb, "Votre séance %s est confirmée pour le %s à %s.\n", data.ServiceName, data.Date, data.Time)
	fmt.Fprintf(&sb, "Montant réglé : %s €\n", data.Price)
	if data.VisioLink != "" {
		fmt.Fprintf(&sb, "Lien de la séance : %s\n", data.VisioLink)
	}
	fmt.Fprintf(&sb, "\nNuméro de réservation : %s\n\nÀ très bientôt,\nSerenity\n", data.BookingID)
	return sb.String()
}

func cancellationText(data emailData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Bonjour %s,\n\n", data.FirstName)
	fmt.Fprintf(&sb, "Votre séance %s prévue le %s à %s a été annulée.\n", data.ServiceName, data.Date, data.Time)
	sb.WriteString("Si vous avez déjà réglé cette séance, vous serez remboursé dans les meilleurs délais.\n")
	sb.WriteString("\nAvec toute ma bienveillance,\nSerenity\n")
	return sb.String()
}
