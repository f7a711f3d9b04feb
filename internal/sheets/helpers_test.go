package sheets

import "golang.org/x/oauth2"

func oauthToken(refresh string) *oauth2.Token {
	return &oauth2.Token{AccessToken: "access", RefreshToken: refresh, TokenType: "Bearer"}
}
