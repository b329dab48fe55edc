package oauth2

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// NewGoogle builds the Google provider. Only the profile scope is requested;
// the numeric profile id is the linking key, everything else is incidental.
func NewGoogle(clientID, clientSecret, callbackURL string, onUser HandleUserFunc) *Provider {
	return New("google", oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  callbackURL,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}, googleUserInfoURL, onUser)
}
