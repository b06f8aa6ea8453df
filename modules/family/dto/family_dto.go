package dto

import (
	"time"

	"family-calendar-api/modules/family/entity"

	"github.com/google/uuid"
)

type CreateFamilyRequest struct {
	Name string `json:"name"`
}

type JoinFamilyRequest struct {
	Code string `json:"code"`
}

type FamilyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Code      string    `json:"code"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type MemberResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func ToFamilyResponse(f *entity.Family) *FamilyResponse {
	return &FamilyResponse{
		ID:        f.ID,
		Name:      f.Name,
		Slug:      f.Slug,
		Code:      f.Code,
		OwnerID:   f.OwnerID,
		CreatedAt: f.CreatedAt,
	}
}

func ToMemberResponse(m entity.FamilyMember) MemberResponse {
	return MemberResponse{
		UserID:   m.UserID,
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt,
	}
}
