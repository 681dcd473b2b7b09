package domain

import "time"

// Review bounds.
const (
	MinReviewRating  = 1
	MaxReviewRating  = 5
	MaxCommentLength = 1000
)

// Review is an immutable user review of a restaurant.
type Review struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId"`
	UserName     string    `json:"userName"`
	UserEmail    string    `json:"userEmail,omitempty"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}
