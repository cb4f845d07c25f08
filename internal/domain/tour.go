package domain

import (
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

const DefaultRatingsAverage = 4.5

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult:
		return true
	}
	return false
}

// Location is a GeoJSON point with a human readable address.
type Location struct {
	Type        string    `json:"type" yaml:"type"`
	Coordinates []float64 `json:"coordinates" yaml:"coordinates"`
	Address     string    `json:"address,omitempty" yaml:"address"`
	Description string    `json:"description,omitempty" yaml:"description"`
	Day         int       `json:"day,omitempty" yaml:"day"`
}

type Tour struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Slug            string      `json:"slug"`
	Duration        int         `json:"duration"`
	DurationWeeks   float64     `json:"duration_weeks"`
	MaxGroupSize    int         `json:"max_group_size"`
	Difficulty      Difficulty  `json:"difficulty"`
	RatingsAverage  float64     `json:"ratings_average"`
	RatingsQuantity int         `json:"ratings_quantity"`
	Price           float64     `json:"price"`
	PriceDiscount   *float64    `json:"price_discount,omitempty"`
	Summary         string      `json:"summary"`
	Description     *string     `json:"description,omitempty"`
	ImageCover      string      `json:"image_cover"`
	Images          []string    `json:"images"`
	StartDates      []time.Time `json:"start_dates"`
	SecretTour      bool        `json:"-"`
	StartLocation   *Location   `json:"start_location,omitempty"`
	Locations       []Location  `json:"locations"`
	GuideIDs        []uuid.UUID `json:"-"`
	Guides          []User      `json:"guides"`
	Reviews         []Review    `json:"reviews,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// TourFields is the writable subset of a tour. Nil pointers are left untouched on update.
type TourFields struct {
	Name          *string      `json:"name" yaml:"name"`
	Duration      *int         `json:"duration" yaml:"duration"`
	MaxGroupSize  *int         `json:"max_group_size" yaml:"max_group_size"`
	Difficulty    *Difficulty  `json:"difficulty" yaml:"difficulty"`
	Price         *float64     `json:"price" yaml:"price"`
	PriceDiscount *float64     `json:"price_discount" yaml:"price_discount"`
	Summary       *string      `json:"summary" yaml:"summary"`
	Description   *string      `json:"description" yaml:"description"`
	ImageCover    *string      `json:"image_cover" yaml:"image_cover"`
	Images        *[]string    `json:"images" yaml:"images"`
	StartDates    *[]time.Time `json:"start_dates" yaml:"start_dates"`
	SecretTour    *bool        `json:"secret_tour" yaml:"secret_tour"`
	StartLocation *Location    `json:"start_location" yaml:"start_location"`
	Locations     *[]Location  `json:"locations" yaml:"locations"`
	Guides        *[]uuid.UUID `json:"guides" yaml:"guides"`
}

type TourSort string

const (
	TourSortNewest       TourSort = "-createdAt"
	TourSortPriceAsc     TourSort = "price"
	TourSortPriceDesc    TourSort = "-price"
	TourSortRatingAsc    TourSort = "ratingsAverage"
	TourSortRatingDesc   TourSort = "-ratingsAverage"
	TourSortDurationAsc  TourSort = "duration"
	TourSortNameAsc      TourSort = "name"
	TourSortBestAndCheap TourSort = "-ratingsAverage,price"
)

type TourListFilter struct {
	Difficulty    *Difficulty
	MinPrice      *float64
	MaxPrice      *float64
	MinDuration   *int
	MaxDuration   *int
	MinRating     *float64
	Sort          TourSort
	Limit         int
	Offset        int
	IncludeSecret bool
}

type TourStats struct {
	Difficulty Difficulty `db:"difficulty" json:"difficulty"`
	NumTours   int        `db:"num_tours" json:"num_tours"`
	NumRatings int        `db:"num_ratings" json:"num_ratings"`
	AvgRating  float64    `db:"avg_rating" json:"avg_rating"`
	AvgPrice   float64    `db:"avg_price" json:"avg_price"`
	MinPrice   float64    `db:"min_price" json:"min_price"`
	MaxPrice   float64    `db:"max_price" json:"max_price"`
}

type MonthlyPlan struct {
	Month         int      `json:"month"`
	NumTourStarts int      `json:"num_tour_starts"`
	Tours         []string `json:"tours"`
}
