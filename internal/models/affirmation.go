package models

type AffirmationCard struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}
