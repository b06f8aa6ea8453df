package service

import (
	"context"
	"strings"

	"family-calendar-api/core/constants"
	"family-calendar-api/core/errors"
	"family-calendar-api/core/utils"
	"family-calendar-api/modules/family/dto"
	"family-calendar-api/modules/family/entity"
	"family-calendar-api/modules/family/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type FamilyService struct {
	repo repository.FamilyRepositoryInterface
}

type FamilyServiceInterface interface {
	CreateFamily(ctx context.Context, ownerID uuid.UUID, req *dto.CreateFamilyRequest) (*dto.FamilyResponse, *errors.AppError)
	JoinFamily(ctx context.Context, userID uuid.UUID, req *dto.JoinFamilyRequest) (*dto.FamilyResponse, *errors.AppError)
	GetFamily(ctx context.Context, familyID, userID uuid.UUID) (*dto.FamilyResponse, *errors.AppError)
	ListMembers(ctx context.Context, familyID uuid.UUID) ([]dto.MemberResponse, *errors.AppError)
}

func NewFamilyService(repo repository.FamilyRepositoryInterface) FamilyServiceInterface {
	return &FamilyService{repo: repo}
}

// CreateFamily creates a family and enrolls the creator as its owner. The
// join code is what other members use to enter the family.
func (s *FamilyService) CreateFamily(ctx context.Context, ownerID uuid.UUID, req *dto.CreateFamilyRequest) (*dto.FamilyResponse, *errors.AppError) {
	if req.Name == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Family name is required", nil)
	}

	family := &entity.Family{
		Name:    req.Name,
		Slug:    slug.Make(req.Name),
		Code:    strings.ToUpper(utils.GenerateRandomString(constants.FamilyCodeLength)),
		OwnerID: ownerID,
	}

	created, err := s.repo.Create(ctx, family)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create family", err)
	}

	if err := s.repo.AddMember(ctx, &entity.FamilyMember{
		FamilyID: created.ID,
		UserID:   ownerID,
		Role:     entity.RoleOwner,
	}); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to add owner to family", err)
	}

	return dto.ToFamilyResponse(created), nil
}

// JoinFamily adds the user to the family matching the join code.
func (s *FamilyService) JoinFamily(ctx context.Context, userID uuid.UUID, req *dto.JoinFamilyRequest) (*dto.FamilyResponse, *errors.AppError) {
	if req.Code == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Join code is required", nil)
	}

	family, err := s.repo.GetByCode(ctx, strings.ToUpper(req.Code))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to look up family", err)
	}
	if family == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Family not found", nil)
	}

	membership, err := s.repo.GetMembership(ctx, family.ID, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to check membership", err)
	}
	if membership != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "Already a member of this family", nil)
	}

	if err := s.repo.AddMember(ctx, &entity.FamilyMember{
		FamilyID: family.ID,
		UserID:   userID,
		Role:     entity.RoleMember,
	}); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to join family", err)
	}

	return dto.ToFamilyResponse(family), nil
}

// GetFamily returns the family if the user belongs to it.
func (s *FamilyService) GetFamily(ctx context.Context, familyID, userID uuid.UUID) (*dto.FamilyResponse, *errors.AppError) {
	family, err := s.repo.GetByID(ctx, familyID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get family", err)
	}
	if family == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Family not found", nil)
	}

	membership, err := s.repo.GetMembership(ctx, familyID, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to check membership", err)
	}
	if membership == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Family not found", nil)
	}

	return dto.ToFamilyResponse(family), nil
}

func (s *FamilyService) ListMembers(ctx context.Context, familyID uuid.UUID) ([]dto.MemberResponse, *errors.AppError) {
	members, err := s.repo.ListMembers(ctx, familyID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list members", err)
	}

	result := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		result = append(result, dto.ToMemberResponse(m))
	}
	return result, nil
}
