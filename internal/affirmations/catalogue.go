// Package affirmations holds the fixed affirmation cards shown on the home
// page.
package affirmations

import "github.com/harrylevesque/stillwater/internal/models"

var catalogue = []models.AffirmationCard{
	{
		Title:    "Strength is in silence",
		ImageURL: "https://img.freepik.com/premium-vector/cartoon-buddha-cute-baby-illustration_961875-480902.jpg",
	},
	{
		Title:    "Healing takes time",
		ImageURL: "https://encrypted-tbn0.gstatic.com/images?q=tbn:ANd9GcQlIfw3cJTYoJ-jFqE4UGaiSojbiZ2jtBgoXw&s",
	},
	{
		Title:    "You are not alone",
		ImageURL: "https://sites.psu.edu/pavlechkopb/files/2019/10/helping-hand.jpg",
	},
	{
		Title:    "Let go off fear",
		ImageURL: "https://media.istockphoto.com/id/1126007754/photo/visionary-man-standing-on-top-of-cliff-edge-staring-at-colorful-sunset-by-the-sea-in-gran.jpg?s=612x612&w=0&k=20&c=SlskUhSogIfzYfB5KGa5o3gWUO4Ndrq02ybGHcQxL-k=",
	},
}

// Cards returns the catalogue in display order. The slice is a copy.
func Cards() []models.AffirmationCard {
	out := make([]models.AffirmationCard, len(catalogue))
	copy(out, catalogue)
	return out
}
