package mailer

import (
	"html/template"
	"net/url"
)

// AuthCopy is the subject/title/body selection for one auth email action type.
type AuthCopy struct {
	Subject    string
	Title      string
	Message    string
	ButtonText string
}

var authCopyTable = map[string]AuthCopy{
	"magiclink": {
		Subject:    "Votre lien de connexion",
		Title:      "Connexion rapide",
		Message:    "Vous avez demandé à vous connecter sans mot de passe. Cliquez sur le bouton pour accéder directement à l'espace membre.",
		ButtonText: "Me Connecter",
	},
	"signup": {
		Subject:    "Confirmez votre inscription",
		Title:      "Bienvenue chez les Joyeux Marcheurs !",
		Message:    "Merci de vous être inscrit. Pour valider votre compte et rejoindre l'aventure, veuillez confirmer votre adresse email en cliquant ci-dessous.",
		ButtonText: "Confirmer mon inscription",
	},
	"recovery": {
		Subject:    "Réinitialisation de mot de passe",
		Title:      "Mot de passe oublié ?",
		Message:    "Une demande de réinitialisation de mot de passe a été effectuée pour votre compte. Si c'est bien vous, cliquez ci-dessous pour créer un nouveau mot de passe.",
		ButtonText: "Réinitialiser le mot de passe",
	},
	"email_change": {
		Subject:    "Confirmation de changement d'email",
		Title:      "Changement d'adresse email",
		Message:    "Vous avez demandé à changer votre adresse email. Veuillez confirmer ce changement en cliquant ci-dessous.",
		ButtonText: "Confirmer le changement",
	},
	"invite": {
		Subject:    "Invitation à rejoindre les Joyeux Marcheurs",
		Title:      "Vous êtes invité !",
		Message:    "Un administrateur vous a invité à rejoindre l'espace membre des Joyeux Marcheurs. Créez votre compte en cliquant ci-dessous.",
		ButtonText: "Accepter l'invitation",
	},
}

// CopyForAction returns the copy for an action type. "magic_link" is accepted
// as an alias; unrecognized types fall back to the magic-link copy.
func CopyForAction(actionType string) AuthCopy {
	if actionType == "magic_link" {
		actionType = "magiclink"
	}
	if c, ok := authCopyTable[actionType]; ok {
		return c
	}
	return authCopyTable["magiclink"]
}

// VerifyURL rebuilds the auth verification link by hand.
func VerifyURL(authBaseURL, tokenHash, actionType, redirectTo string) string {
	params := url.Values{}
	params.Set("token", tokenHash)
	params.Set("type", actionType)
	params.Set("redirect_to", redirectTo)
	return authBaseURL + "/auth/v1/verify?" + params.Encode()
}

// RenderAuthEmail renders a branded auth email. A short token (8 characters or
// fewer) is also shown as a manually-enterable code; longer tokens are link-only.
func RenderAuthEmail(siteURL, confirmationURL, token string, c AuthCopy) (string, error) {
	data := LayoutData{
		Title:      c.Title,
		Message:    template.HTML(template.HTMLEscapeString(c.Message)),
		ButtonURL:  confirmationURL,
		ButtonText: c.ButtonText,
		LinkHint:   confirmationURL,
		SiteURL:    siteURL,
	}
	if token != "" && len(token) <= 8 {
		data.Code = token
	}
	return Render(data)
}
