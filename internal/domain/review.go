package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Review    string    `db:"review" json:"review"`
	Rating    int       `db:"rating" json:"rating"`
	TourID    uuid.UUID `db:"tour_id" json:"tour"`
	UserID    uuid.UUID `db:"user_id" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	ReviewerName  string `db:"reviewer_name" json:"-"`
	ReviewerPhoto string `db:"reviewer_photo" json:"-"`
}

// Reviewer is the populated author shown next to a review.
type Reviewer struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Photo string    `json:"photo"`
}

func (r Review) Author() Reviewer {
	return Reviewer{ID: r.UserID, Name: r.ReviewerName, Photo: r.ReviewerPhoto}
}

// MarshalJSON nests the author under "user".
func (r Review) MarshalJSON() ([]byte, error) {
	type plain Review
	return json.Marshal(struct {
		plain
		User Reviewer `json:"user"`
	}{plain(r), r.Author()})
}

type ReviewAggregate struct {
	TourID          uuid.UUID `db:"tour_id" json:"tour_id"`
	RatingsQuantity int       `db:"ratings_quantity" json:"ratings_quantity"`
	RatingsAverage  float64   `db:"ratings_average" json:"ratings_average"`
}

type ReviewListFilter struct {
	TourID *uuid.UUID
	UserID *uuid.UUID
	Limit  int
	Offset int
}
