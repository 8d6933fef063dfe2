package users

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile is the professional profile a user keeps outside any single résumé.
type Profile struct {
	UserID      string       `json:"userId"`
	Bio         string       `json:"bio"`
	Phone       string       `json:"phone"`
	Location    string       `json:"location"`
	Experiences []Experience `json:"experiences"`
	Educations  []Education  `json:"educations"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type Experience struct {
	Title       string `json:"title" binding:"max=200"`
	Company     string `json:"company" binding:"max=200"`
	Location    string `json:"location" binding:"max=200"`
	StartDate   string `json:"startDate" binding:"max=32"`
	EndDate     string `json:"endDate" binding:"max=32"`
	Current     bool   `json:"current"`
	Description string `json:"description" binding:"max=5000"`
}

type Education struct {
	School      string `json:"school" binding:"max=200"`
	Degree      string `json:"degree" binding:"max=200"`
	Field       string `json:"field" binding:"max=200"`
	StartDate   string `json:"startDate" binding:"max=32"`
	EndDate     string `json:"endDate" binding:"max=32"`
	Description string `json:"description" binding:"max=5000"`
}

// ProfileUpdate replaces the profile scalars and both ordered collections.
// A nil Name leaves the user's name unchanged.
type ProfileUpdate struct {
	Name        *string
	Bio         string
	Phone       string
	Location    string
	Experiences []Experience
	Educations  []Education
}

// Snapshot is the flat profile view used to seed a new résumé.
type Snapshot struct {
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Bio         string       `json:"bio"`
	Phone       string       `json:"phone"`
	Location    string       `json:"location"`
	Experiences []Experience `json:"experiences"`
	Educations  []Education  `json:"educations"`
}
