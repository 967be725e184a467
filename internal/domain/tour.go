package domain

import "time"

type Tour struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Summary    string    `json:"summary,omitempty"`
	ImageCover string    `json:"image_cover,omitempty"`
	Duration   int       `json:"duration"`
	Price      float64   `json:"price"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
