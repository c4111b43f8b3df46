package mailer

import (
	"fmt"
	"strings"
	"time"
)

// BookingEmailData carries everything the booking email bodies interpolate.
type BookingEmailData struct {
	BookingNumber string
	CustomerName  string
	ServiceName   string
	RequestedDate time.Time
	RequestedTime string
	DurationHours float64
	Address       string
	City          string
	PostalCode    string
	TotalCents    int64
	Reason        string
}

func euros(cents int64) string {
	s := fmt.Sprintf("%.2f", float64(cents)/100)
	return strings.Replace(s, ".", ",", 1) + " €"
}

func frenchDate(t time.Time) string {
	months := [...]string{
		"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre",
	}
	return fmt.Sprintf("%d %s %d", t.Day(), months[t.Month()-1], t.Year())
}

func bookingSummaryHTML(d BookingEmailData) string {
	return fmt.Sprintf(`<ul>
<li><strong>Référence :</strong> %s</li>
<li><strong>Prestation :</strong> %s</li>
<li><strong>Date :</strong> %s à %s</li>
<li><strong>Durée :</strong> %.1f h</li>
<li><strong>Adresse :</strong> %s, %s %s</li>
<li><strong>Montant :</strong> %s</li>
</ul>`,
		d.BookingNumber, d.ServiceName,
		frenchDate(d.RequestedDate), d.RequestedTime,
		d.DurationHours,
		d.Address, d.PostalCode, d.City,
		euros(d.TotalCents))
}

// BookingCreatedEmail is sent to the client when their request is recorded.
func BookingCreatedEmail(d BookingEmailData) (subject, body string) {
	subject = fmt.Sprintf("Votre demande de réservation %s", d.BookingNumber)
	body = fmt.Sprintf(`<p>Bonjour %s,</p>
<p>Nous avons bien reçu votre demande de réservation. Elle sera confirmée dans les plus brefs délais.</p>
%s
<p>À bientôt !</p>`, d.CustomerName, bookingSummaryHTML(d))
	return subject, body
}

// BookingCreatedAdminEmail notifies the business of a new request.
func BookingCreatedAdminEmail(d BookingEmailData) (subject, body string) {
	subject = fmt.Sprintf("Nouvelle demande de réservation %s", d.BookingNumber)
	body = fmt.Sprintf(`<p>Une nouvelle demande de réservation vient d'arriver.</p>
<p><strong>Client :</strong> %s</p>
%s`, d.CustomerName, bookingSummaryHTML(d))
	return subject, body
}

// BookingConfirmedEmail is sent to the client when the booking is confirmed.
func BookingConfirmedEmail(d BookingEmailData) (subject, body string) {
	subject = fmt.Sprintf("Réservation %s confirmée", d.BookingNumber)
	body = fmt.Sprintf(`<p>Bonjour %s,</p>
<p>Bonne nouvelle : votre réservation est confirmée.</p>
%s
<p>À bientôt !</p>`, d.CustomerName, bookingSummaryHTML(d))
	return subject, body
}

// BookingCancelledEmail is sent to the client when the booking is cancelled
// or rejected. The reason line appears only when one was given.
func BookingCancelledEmail(d BookingEmailData) (subject, body string) {
	subject = fmt.Sprintf("Réservation %s annulée", d.BookingNumber)
	reasonLine := ""
	if d.Reason != "" {
		reasonLine = fmt.Sprintf("<p><strong>Motif :</strong> %s</p>\n", d.Reason)
	}
	body = fmt.Sprintf(`<p>Bonjour %s,</p>
<p>Votre réservation a été annulée.</p>
%s%s
<p>N'hésitez pas à refaire une demande pour une autre date.</p>`,
		d.CustomerName, reasonLine, bookingSummaryHTML(d))
	return subject, body
}
