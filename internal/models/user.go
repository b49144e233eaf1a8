package models

// User is the verified identity carried by a session token.
type User struct {
	Subject    string `json:"sub"`
	GivenName  string `json:"given_name"`
	PictureURL string `json:"picture"`
}
