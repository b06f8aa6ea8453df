package service

import (
	"context"
	"testing"
	"time"

	"family-calendar-api/core/constants"
	"family-calendar-api/core/errors"
	"family-calendar-api/modules/family/dto"
	"family-calendar-api/modules/family/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFamilyRepo struct {
	families map[uuid.UUID]*entity.Family
	members  []entity.FamilyMember
}

func newFakeFamilyRepo() *fakeFamilyRepo {
	return &fakeFamilyRepo{families: make(map[uuid.UUID]*entity.Family)}
}

func (r *fakeFamilyRepo) Create(_ context.Context, family *entity.Family) (*entity.Family, error) {
	cp := *family
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	r.families[cp.ID] = &cp
	return &cp, nil
}

func (r *fakeFamilyRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Family, error) {
	f, ok := r.families[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFamilyRepo) GetByCode(_ context.Context, code string) (*entity.Family, error) {
	for _, f := range r.families {
		if f.Code == code {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeFamilyRepo) AddMember(_ context.Context, member *entity.FamilyMember) error {
	cp := *member
	cp.ID = uuid.New()
	cp.JoinedAt = time.Now()
	r.members = append(r.members, cp)
	return nil
}

func (r *fakeFamilyRepo) ListMembers(_ context.Context, familyID uuid.UUID) ([]entity.FamilyMember, error) {
	var out []entity.FamilyMember
	for _, m := range r.members {
		if m.FamilyID == familyID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeFamilyRepo) GetMembership(_ context.Context, familyID, userID uuid.UUID) (*entity.FamilyMember, error) {
	for _, m := range r.members {
		if m.FamilyID == familyID && m.UserID == userID {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

func TestCreateFamilyEnrollsOwner(t *testing.T) {
	repo := newFakeFamilyRepo()
	svc := NewFamilyService(repo)
	ownerID := uuid.New()

	resp, appErr := svc.CreateFamily(context.Background(), ownerID, &dto.CreateFamilyRequest{Name: "The Smiths"})
	require.Nil(t, appErr)
	assert.Equal(t, "the-smiths", resp.Slug)
	assert.Len(t, resp.Code, constants.FamilyCodeLength)
	assert.Equal(t, ownerID, resp.OwnerID)

	members, err := svc.ListMembers(context.Background(), resp.ID)
	require.Nil(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, string(entity.RoleOwner), members[0].Role)
}

func TestJoinFamilyByCode(t *testing.T) {
	repo := newFakeFamilyRepo()
	svc := NewFamilyService(repo)
	ownerID := uuid.New()

	created, appErr := svc.CreateFamily(context.Background(), ownerID, &dto.CreateFamilyRequest{Name: "The Smiths"})
	require.Nil(t, appErr)

	joinerID := uuid.New()
	joined, appErr := svc.JoinFamily(context.Background(), joinerID, &dto.JoinFamilyRequest{Code: created.Code})
	require.Nil(t, appErr)
	assert.Equal(t, created.ID, joined.ID)

	// Joining twice is rejected
	_, appErr = svc.JoinFamily(context.Background(), joinerID, &dto.JoinFamilyRequest{Code: created.Code})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrAlreadyExists, appErr.Code)
}

func TestJoinFamilyUnknownCode(t *testing.T) {
	repo := newFakeFamilyRepo()
	svc := NewFamilyService(repo)

	_, appErr := svc.JoinFamily(context.Background(), uuid.New(), &dto.JoinFamilyRequest{Code: "NOPE42"})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestGetFamilyRequiresMembership(t *testing.T) {
	repo := newFakeFamilyRepo()
	svc := NewFamilyService(repo)

	created, appErr := svc.CreateFamily(context.Background(), uuid.New(), &dto.CreateFamilyRequest{Name: "Private"})
	require.Nil(t, appErr)

	_, appErr = svc.GetFamily(context.Background(), created.ID, uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}
