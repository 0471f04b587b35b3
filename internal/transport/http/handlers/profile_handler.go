package handlers

import (
	"errors"
	"net/http"
	"time"

	authsvc "github.com/mangala-lk/backend/internal/services/auth"
	profilesvc "github.com/mangala-lk/backend/internal/services/profiles"
	"github.com/mangala-lk/backend/internal/transport/http/dto"
	httperrors "github.com/mangala-lk/backend/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *profilesvc.Service
}

func NewProfileHandler(service *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.ProfileUpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	birthdate, err := time.Parse(time.DateOnly, req.Birthdate)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "birthdate must be YYYY-MM-DD")
		return
	}

	profile, err := h.service.Upsert(r.Context(), identity.UserID, profilesvc.UpsertInput{
		Sex:           req.Sex,
		Birthdate:     birthdate,
		District:      req.District,
		HeightCM:      req.HeightCM,
		MaritalStatus: req.MaritalStatus,
		Religion:      req.Religion,
		Caste:         req.Caste,
		MotherTongue:  req.MotherTongue,
		Education:     req.Education,
		Occupation:    req.Occupation,
		AnnualIncome:  req.AnnualIncome,
		AboutMe:       req.AboutMe,
		FamilyDetails: req.FamilyDetails,
		Hobbies:       req.Hobbies,
		Expectations:  req.Expectations,
	})
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewProfileResponse(profile))
}

func (h *ProfileHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	profile, err := h.service.GetOwn(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewProfileResponse(profile))
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	userID, ok := pathID(r, "userID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	profile, err := h.service.Get(r.Context(), identity.UserID, identity.Role, userID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewProfileResponse(profile))
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, profilesvc.ErrNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	case errors.Is(err, profilesvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "profile is not visible")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
