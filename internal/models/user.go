package models

import "time"

// Gender values stored on the user profile
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Age groups driving the matching index. Minors and adults never see each
// other in discovery and cannot exchange friend requests.
const (
	AgeGroupTeen  = "13-17"
	AgeGroupAdult = "18-100"
)

// User represents a user profile stored in MongoDB. The document ID is the
// Firebase UID.
type User struct {
	ID               string    `json:"id" bson:"_id"`
	Name             string    `json:"name" bson:"name"`
	Gender           string    `json:"gender" bson:"gender"`
	BirthDate        time.Time `json:"birth_date" bson:"birth_date"`
	Country          string    `json:"country" bson:"country"`
	SpokenLanguage   string    `json:"spoken_language" bson:"spoken_language"`
	LearningLanguage string    `json:"learning_language" bson:"learning_language"`
	// GenderPreference restricts discovery and friend requests to users of
	// the same gender when set.
	GenderPreference bool      `json:"gender_preference" bson:"gender_preference"`
	AvatarKey        string    `json:"avatar_key,omitempty" bson:"avatar_key,omitempty"`
	About            string    `json:"about,omitempty" bson:"about,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
}

// MatchingProfile is the denormalized per-user row backing the discovery
// index. Rewritten whenever the underlying profile changes.
type MatchingProfile struct {
	UserID           string    `json:"user_id" bson:"_id"`
	AgeGroup         string    `json:"age_group" bson:"age_group"`
	Gender           string    `json:"gender" bson:"gender"`
	GenderPreference bool      `json:"gender_preference" bson:"gender_preference"`
	Country          string    `json:"country" bson:"country"`
	SpokenLanguage   string    `json:"spoken_language" bson:"spoken_language"`
	LearningLanguage string    `json:"learning_language" bson:"learning_language"`
	LastActivity     time.Time `json:"last_activity" bson:"last_activity"`
}

// Age computes a user's age in full years at the given instant.
func Age(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	anniversary := birthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// AgeGroupFor maps a birth date onto the matching age group.
func AgeGroupFor(birthDate, now time.Time) string {
	if Age(birthDate, now) < 18 {
		return AgeGroupTeen
	}
	return AgeGroupAdult
}

// MatchingProfileFor derives the matching row for a user profile.
func MatchingProfileFor(u *User, now time.Time) *MatchingProfile {
	return &MatchingProfile{
		UserID:           u.ID,
		AgeGroup:         AgeGroupFor(u.BirthDate, now),
		Gender:           u.Gender,
		GenderPreference: u.GenderPreference,
		Country:          u.Country,
		SpokenLanguage:   u.SpokenLanguage,
		LearningLanguage: u.LearningLanguage,
		LastActivity:     now,
	}
}

// CreateUserRequest defines the request body for signup
type CreateUserRequest struct {
	Name             string `json:"name" validate:"required,min=2,max=50"`
	Gender           string `json:"gender" validate:"required,oneof=male female other"`
	BirthDate        string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Country          string `json:"country" validate:"required,len=2"`
	SpokenLanguage   string `json:"spoken_language" validate:"required,min=2,max=8"`
	LearningLanguage string `json:"learning_language" validate:"required,min=2,max=8"`
	GenderPreference bool   `json:"gender_preference"`
	AvatarKey        string `json:"avatar_key,omitempty"`
	About            string `json:"about,omitempty" validate:"omitempty,max=1000"`
}

// UpdateUserRequest defines the request body for profile edits
type UpdateUserRequest struct {
	Name             string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Country          string `json:"country,omitempty" validate:"omitempty,len=2"`
	SpokenLanguage   string `json:"spoken_language,omitempty" validate:"omitempty,min=2,max=8"`
	LearningLanguage string `json:"learning_language,omitempty" validate:"omitempty,min=2,max=8"`
	GenderPreference *bool  `json:"gender_preference,omitempty"`
	AvatarKey        string `json:"avatar_key,omitempty"`
	About            string `json:"about,omitempty" validate:"omitempty,max=1000"`
}

// ProfileResponse is the enriched profile shape returned to clients
type ProfileResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Gender           string `json:"gender"`
	Age              int    `json:"age"`
	Country          string `json:"country"`
	SpokenLanguage   string `json:"spoken_language"`
	LearningLanguage string `json:"learning_language"`
	AvatarURL        string `json:"avatar_url,omitempty"`
	About            string `json:"about,omitempty"`
}
