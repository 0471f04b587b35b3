package dto

import (
	"time"

	"github.com/mangala-lk/backend/internal/domain/model"
)

type ProfileUpsertRequest struct {
	Sex           string  `json:"sex"`
	Birthdate     string  `json:"birthdate"`
	District      string  `json:"district"`
	HeightCM      float64 `json:"height_cm"`
	MaritalStatus string  `json:"marital_status"`
	Religion      string  `json:"religion"`
	Caste         string  `json:"caste"`
	MotherTongue  string  `json:"mother_tongue"`
	Education     string  `json:"education"`
	Occupation    string  `json:"occupation"`
	AnnualIncome  string  `json:"annual_income"`
	AboutMe       string  `json:"about_me"`
	FamilyDetails string  `json:"family_details"`
	Hobbies       string  `json:"hobbies"`
	Expectations  string  `json:"expectations"`
}

type ProfileResponse struct {
	ID               int64   `json:"id"`
	UserID           int64   `json:"user_id"`
	Sex              string  `json:"sex"`
	Birthdate        string  `json:"birthdate"`
	Age              int     `json:"age"`
	District         string  `json:"district"`
	HeightCM         float64 `json:"height_cm,omitempty"`
	MaritalStatus    string  `json:"marital_status"`
	Religion         string  `json:"religion"`
	Caste            string  `json:"caste,omitempty"`
	MotherTongue     string  `json:"mother_tongue,omitempty"`
	Education        string  `json:"education,omitempty"`
	Occupation       string  `json:"occupation,omitempty"`
	AnnualIncome     string  `json:"annual_income,omitempty"`
	AboutMe          string  `json:"about_me,omitempty"`
	FamilyDetails    string  `json:"family_details,omitempty"`
	Hobbies          string  `json:"hobbies,omitempty"`
	Expectations     string  `json:"expectations,omitempty"`
	ModerationStatus string  `json:"moderation_status"`
}

func NewProfileResponse(p model.Profile) ProfileResponse {
	return ProfileResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		Sex:              p.Sex,
		Birthdate:        p.Birthdate.Format(time.DateOnly),
		Age:              p.Age,
		District:         string(p.District),
		HeightCM:         p.HeightCM,
		MaritalStatus:    p.MaritalStatus,
		Religion:         p.Religion,
		Caste:            p.Caste,
		MotherTongue:     p.MotherTongue,
		Education:        p.Education,
		Occupation:       p.Occupation,
		AnnualIncome:     p.AnnualIncome,
		AboutMe:          p.AboutMe,
		FamilyDetails:    p.FamilyDetails,
		Hobbies:          p.Hobbies,
		Expectations:     p.Expectations,
		ModerationStatus: string(p.ModerationStatus),
	}
}
