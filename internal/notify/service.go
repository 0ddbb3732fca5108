package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/Serge13790/Site-Marcheurs/internal/db"
	"github.com/Serge13790/Site-Marcheurs/internal/mailer"
)

// Publisher pushes an event onto a live feed topic. *live.Hub satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

var ErrNoAdminEmail = errors.New("notify: ADMIN_EMAIL missing")

// MarkerSent is the response body for a delivered notification; skips carry a
// "Skipped (...)" marker instead.
const MarkerSent = "Email sent"

type Service struct {
	db          db.Querier
	sender      mailer.Sender
	feed        Publisher
	adminEmail  string
	senderEmail string
	siteURL     string
	authBaseURL string
}

func NewService(database db.Querier, sender mailer.Sender, feed Publisher, adminEmail, senderEmail, siteURL, authBaseURL string) *Service {
	if senderEmail == "" {
		senderEmail = adminEmail
	}
	if authBaseURL == "" {
		authBaseURL = siteURL
	}
	return &Service{
		db:          database,
		sender:      sender,
		feed:        feed,
		adminEmail:  adminEmail,
		senderEmail: senderEmail,
		siteURL:     siteURL,
		authBaseURL: authBaseURL,
	}
}

// SendAuthEmail renders and delivers one branded auth email from the hook
// payload. The verification link is rebuilt from the token hash so the copy
// can be customized without touching the auth provider.
func (s *Service) SendAuthEmail(ctx context.Context, req AuthEmailRequest) error {
	c := mailer.CopyForAction(req.EmailData.EmailActionType)
	link := mailer.VerifyURL(s.authBaseURL, req.EmailData.TokenHash, req.EmailData.EmailActionType, req.EmailData.RedirectTo)
	html, err := mailer.RenderAuthEmail(s.siteURL, link, req.EmailData.Token, c)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, mailer.Message{
		To:      []string{req.User.Email},
		Subject: c.Subject,
		HTML:    html,
	})
}

// Dispatch classifies one change event and sends the matching notification.
// The returned marker is the HTTP body: MarkerSent, or "Skipped (...)" when
// the event deliberately produces no email. Errors mean config or provider
// failure and map to a 500.
func (s *Service) Dispatch(ctx context.Context, ev ChangeEvent, now time.Time) (string, error) {
	d := Decide(ev, now)
	if d.Kind == KindSkip {
		log.Printf("webhook skipped: %s on %s: %s", ev.Type, ev.Table, d.Reason)
		return "Skipped (" + d.Reason + ")", nil
	}
	if s.adminEmail == "" {
		return "", ErrNoAdminEmail
	}

	msg, err := s.compose(ctx, d)
	if err != nil {
		return "", err
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return "", err
	}

	s.publishFeed(ctx, ev, msg.Subject)
	return MarkerSent, nil
}

func (s *Service) compose(ctx context.Context, d Decision) (mailer.Message, error) {
	var (
		to, bcc []string
		subject string
		data    mailer.LayoutData
	)
	data.SiteURL = s.siteURL

	switch d.Kind {
	case KindProfileCompleted:
		p := d.Profile
		to = s.adminEmails(ctx)
		subject = "✅ Profil complété : " + p.fullName()
		data.Title = "Nouvelle Adhésion à Valider"
		data.Message = htmlf(`Le profil de <strong>%s</strong> a complété son profil.<br>Il attend votre validation.`, p.fullName())
		data.Rows = []mailer.InfoRow{
			{Label: "Email", Value: p.Email},
			{Label: "Nom", Value: orDash(p.LastName) + " " + orDash(p.FirstName)},
			{Label: "Ville", Value: orDash(p.City)},
			{Label: "Mobile", Value: orDash(p.PhoneMobile)},
		}
		data.ButtonURL = s.siteURL + "/admin/users"
		data.ButtonText = "Gérer les Utilisateurs"

	case KindProfileApproved:
		p := d.Profile
		to = []string{p.Email}
		subject = "🎉 Compte validé : Bienvenue chez les Joyeux Marcheurs !"
		data.Title = "Félicitations " + p.fullName() + " !"
		data.Message = htmlf(`Votre compte a été validé par un administrateur.<br>Vous pouvez dès maintenant accéder à l'espace membre et vous inscrire aux prochaines randonnées.`)
		data.ButtonURL = s.siteURL
		data.ButtonText = "Accéder au site"

	case KindHikeDeleted:
		h := d.Hike
		to = s.adminEmails(ctx)
		title := h.Title
		if title == "" {
			title = "Titre inconnu"
		}
		subject = "🗑️ Rando SUPPRIMÉE : " + title
		data.Title = "Randonnée Supprimée"
		data.Message = htmlf(`La randonnée "<strong>%s</strong>" a été <strong>définitivement supprimée</strong> de la base de données.`, h.Title)
		data.Rows = []mailer.InfoRow{
			{Label: "Titre", Value: h.Title},
			{Label: "Date", Value: orDash(h.day())},
			{Label: "Statut", Value: h.Status + " (Avant suppression)"},
		}
		data.ButtonURL = s.siteURL
		data.ButtonText = "Voir sur le site"

	case KindHikePublished:
		h := d.Hike
		creator := s.profileName(ctx, h.CreatedBy, "L'équipe")
		members, err := s.memberEmails(ctx)
		if err != nil {
			return mailer.Message{}, err
		}
		// Primary recipient is the sender address so the member list stays in BCC.
		to, bcc = []string{s.senderEmail}, members
		subject = "🥾 Nouvelle Rando : " + h.Title
		data.Title = "Nouvelle Rando à venir !"
		body := htmlf(`Une nouvelle randonnée "<strong>%s</strong>" a été publiée par <strong>%s</strong>.<br>Connectez-vous pour voir les détails et vous inscrire.`, h.Title, creator)
		if h.Description != "" {
			body += mailer.RenderMarkdown(h.Description)
		}
		data.Message = body
		data.Rows = hikeRows(h, " (NOUVEAU)")
		data.ButtonURL = s.siteURL
		data.ButtonText = "Voir sur le site"

	case KindHikeUnpublished:
		h := d.Hike
		creator := s.profileName(ctx, h.CreatedBy, "L'équipe")
		to = s.adminEmails(ctx)
		subject = "⚠️ Rando Dépubliée : " + h.Title
		data.Title = "Rando Remise en Brouillon"
		data.Message = htmlf(`La randonnée "<strong>%s</strong>" a été retirée de la publication (remise en brouillon) par <strong>%s</strong>.`, h.Title, creator)
		data.Rows = hikeRows(h, "")
		data.ButtonURL = s.siteURL
		data.ButtonText = "Voir sur le site"

	case KindHikePublishedEdited:
		h := d.Hike
		creator := s.profileName(ctx, h.CreatedBy, "L'équipe")
		to = s.adminEmails(ctx)
		subject = "✏️ Mise à jour Rando (Publiée) : " + h.Title
		data.Title = "Randonnée Mise à Jour"
		data.Message = htmlf(`La randonnée "<strong>%s</strong>" (déjà publiée) a été modifiée par <strong>%s</strong>.`, h.Title, creator)
		data.Rows = hikeRows(h, "")
		data.ButtonURL = s.siteURL
		data.ButtonText = "Voir sur le site"

	case KindHikeDraftEdited:
		h := d.Hike
		creator := s.profileName(ctx, h.CreatedBy, "L'équipe")
		to = s.adminEmails(ctx)
		subject = "📝 Mise à jour Rando (Brouillon) : " + h.Title
		data.Title = "Randonnée Modifiée (Brouillon)"
		data.Message = htmlf(`<strong>%s</strong> a modifié le brouillon : "<strong>%s</strong>".`, creator, h.Title)
		data.Rows = hikeRows(h, "")
		data.ButtonURL = s.siteURL
		data.ButtonText = "Voir sur le site"

	case KindPhotoAdded:
		p := d.Photo
		to = s.adminEmails(ctx)
		author := s.profileName(ctx, p.UserID, "Un membre")
		hikeTitle := s.hikeTitle(ctx, p.HikeID)
		subject = "📸 Nouvelle Photo ajoutée"
		data.Title = "Nouvelle Photo"
		data.Message = htmlf(`<strong>%s</strong> a ajouté une photo à la randonnée "<strong>%s</strong>".`, author, hikeTitle)
		data.Rows = []mailer.InfoRow{
			{Label: "Auteur", Value: author},
			{Label: "Rando", Value: hikeTitle},
		}
		data.ButtonURL = s.siteURL + "/admin/photos"
		data.ButtonText = "Modérer dans l'admin"

	case KindPhotoRemoved:
		p := d.Photo
		to = s.adminEmails(ctx)
		author := s.profileName(ctx, p.UserID, "Un membre")
		hikeTitle := s.hikeTitle(ctx, p.HikeID)
		subject = "🗑️ Photo supprimée"
		data.Title = "Photo Supprimée"
		data.Message = htmlf(`Une photo de <strong>%s</strong> sur la randonnée "<strong>%s</strong>" a été supprimée.`, author, hikeTitle)
		data.Rows = []mailer.InfoRow{
			{Label: "Auteur", Value: author},
			{Label: "Rando", Value: hikeTitle},
		}
		data.ButtonURL = s.siteURL
		data.ButtonText = "Voir sur le site"

	default:
		return mailer.Message{}, fmt.Errorf("notify: no composition for kind %d", d.Kind)
	}

	html, err := mailer.Render(data)
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{To: to, Bcc: bcc, Subject: subject, HTML: html}, nil
}

func hikeRows(h hikeRecord, statusSuffix string) []mailer.InfoRow {
	date := h.day()
	if date == "" {
		date = "Non définie"
	}
	return []mailer.InfoRow{
		{Label: "Titre", Value: h.Title},
		{Label: "Statut", Value: h.Status + statusSuffix},
		{Label: "Date", Value: date},
		{Label: "Lieu", Value: orDash(h.Location)},
	}
}

// adminEmails looks up current admin profiles so new admins receive notices
// without redeploying; the configured address is the fallback.
func (s *Service) adminEmails(ctx context.Context) []string {
	rows, err := s.db.Query(ctx, `SELECT email FROM profiles WHERE role='admin' AND email <> ''`)
	if err != nil {
		log.Printf("admin lookup failed, using configured address: %v", err)
		return []string{s.adminEmail}
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return []string{s.adminEmail}
		}
		emails = append(emails, email)
	}
	if len(emails) == 0 {
		return []string{s.adminEmail}
	}
	return emails
}

func (s *Service) memberEmails(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT email FROM profiles WHERE approved=true AND email <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, nil
}

func (s *Service) profileName(ctx context.Context, id, fallback string) string {
	if id == "" {
		return fallback
	}
	var p profileRecord
	row := s.db.QueryRow(ctx, `SELECT first_name, last_name, display_name, email FROM profiles WHERE id=$1`, id)
	if err := row.Scan(&p.FirstName, &p.LastName, &p.DisplayName, &p.Email); err != nil {
		return fallback
	}
	if name := p.fullName(); name != "" {
		return name
	}
	return fallback
}

func (s *Service) hikeTitle(ctx context.Context, id string) string {
	const fallback = "une randonnée"
	if id == "" {
		return fallback
	}
	var title string
	row := s.db.QueryRow(ctx, `SELECT title FROM hikes WHERE id=$1`, id)
	if err := row.Scan(&title); err != nil || title == "" {
		return fallback
	}
	return title
}

// publishFeed mirrors the notification onto the admin live feed. Failures are
// logged only; the webhook already succeeded.
func (s *Service) publishFeed(ctx context.Context, ev ChangeEvent, subject string) {
	if s.feed == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"table":   ev.Table,
		"type":    ev.Type,
		"subject": subject,
	})
	if err != nil {
		return
	}
	if err := s.feed.Publish(ctx, "admin", payload); err != nil {
		log.Printf("live feed publish failed: %v", err)
	}
}

func htmlf(format string, args ...string) template.HTML {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = template.HTMLEscapeString(a)
	}
	return template.HTML(fmt.Sprintf(format, escaped...))
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
