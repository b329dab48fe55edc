package oauth2

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

const facebookUserInfoURL = "https://graph.facebook.com/me?fields=id,name"

// NewFacebook builds the Facebook provider against the Graph API.
func NewFacebook(clientID, clientSecret, callbackURL string, onUser HandleUserFunc) *Provider {
	return New("facebook", oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  callbackURL,
		Scopes:       []string{"public_profile"},
		Endpoint:     facebook.Endpoint,
	}, facebookUserInfoURL, onUser)
}
