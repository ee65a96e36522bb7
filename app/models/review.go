package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	MealID        string             `bson:"mealId" json:"mealId"`
	MealTitle     string             `bson:"mealTitle,omitempty" json:"mealTitle,omitempty"`
	Email         string             `bson:"email" json:"email"`
	ReviewerName  string             `bson:"reviewerName,omitempty" json:"reviewerName,omitempty"`
	ReviewerImage string             `bson:"reviewerImage,omitempty" json:"reviewerImage,omitempty"`
	Rating        float64            `bson:"rating" json:"rating"`
	Text          string             `bson:"text,omitempty" json:"text,omitempty"`
	Date          time.Time          `bson:"date" json:"date"`
}

// RatingStats is the aggregate a meal carries for its reviews.
type RatingStats struct {
	Average float64
	Count   int
}

// ComputeRatingStats returns the arithmetic mean and count of rs.
func ComputeRatingStats(rs []Review) RatingStats {
	if len(rs) == 0 {
		return RatingStats{}
	}
	var sum float64
	for _, r := range rs {
		sum += r.Rating
	}
	return RatingStats{Average: sum / float64(len(rs)), Count: len(rs)}
}
