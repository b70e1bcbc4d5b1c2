package entity

import "time"

// Course groups lectures under a title/category. Thumbnail mirrors the avatar
// pair on User: an opaque storage id plus a retrievable URL.
type Course struct {
	ID                string
	Title             string
	Description       string
	Category          string
	CreatedBy         string
	ThumbnailPublicID string
	ThumbnailURL      string
	NumberOfLectures  int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Lecture is a single unit of course content with attached media.
type Lecture struct {
	ID            string
	CourseID      string
	Title         string
	Description   string
	MediaPublicID string
	MediaURL      string
	CreatedAt     time.Time
}
