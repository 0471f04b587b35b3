package model

import (
	"time"

	"github.com/mangala-lk/backend/internal/domain/enums"
)

type Profile struct {
	ID               int64                  `json:"id"`
	UserID           int64                  `json:"user_id"`
	Sex              string                 `json:"sex"`
	Birthdate        time.Time              `json:"birthdate"`
	Age              int                    `json:"age"`
	District         enums.District         `json:"district"`
	HeightCM         float64                `json:"height_cm,omitempty"`
	MaritalStatus    string                 `json:"marital_status"`
	Religion         string                 `json:"religion"`
	Caste            string                 `json:"caste"`
	MotherTongue     string                 `json:"mother_tongue"`
	Education        string                 `json:"education"`
	Occupation       string                 `json:"occupation"`
	AnnualIncome     string                 `json:"annual_income"`
	AboutMe          string                 `json:"about_me"`
	FamilyDetails    string                 `json:"family_details"`
	Hobbies          string                 `json:"hobbies"`
	Expectations     string                 `json:"expectations"`
	ModerationStatus enums.ModerationStatus `json:"moderation_status"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}
