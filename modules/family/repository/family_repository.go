package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"family-calendar-api/core/database"
	"family-calendar-api/core/logger"
	"family-calendar-api/modules/family/entity"

	"github.com/google/uuid"
)

type FamilyRepositoryInterface interface {
	Create(ctx context.Context, family *entity.Family) (*entity.Family, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Family, error)
	GetByCode(ctx context.Context, code string) (*entity.Family, error)
	AddMember(ctx context.Context, member *entity.FamilyMember) error
	ListMembers(ctx context.Context, familyID uuid.UUID) ([]entity.FamilyMember, error)
	GetMembership(ctx context.Context, familyID, userID uuid.UUID) (*entity.FamilyMember, error)
}

type FamilyRepository struct {
	db database.Querier
}

func NewFamilyRepository(db database.Querier) FamilyRepositoryInterface {
	return &FamilyRepository{db: db}
}

func (r *FamilyRepository) Create(ctx context.Context, family *entity.Family) (*entity.Family, error) {
	query := `
		INSERT INTO families (name, slug, code, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, slug, code, owner_id, created_at, updated_at
	`
	now := time.Now()

	var created entity.Family
	err := r.db.GetContext(ctx, &created, query,
		family.Name,
		family.Slug,
		family.Code,
		family.OwnerID,
		now,
		now,
	)
	if err != nil {
		logger.Error("FamilyRepository:Create", err)
		return nil, err
	}
	return &created, nil
}

func (r *FamilyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Family, error) {
	query := `
		SELECT id, name, slug, code, owner_id, created_at, updated_at
		FROM families
		WHERE id = $1
	`
	var family entity.Family
	err := r.db.GetContext(ctx, &family, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("FamilyRepository:GetByID", err)
		return nil, err
	}
	return &family, nil
}

func (r *FamilyRepository) GetByCode(ctx context.Context, code string) (*entity.Family, error) {
	query := `
		SELECT id, name, slug, code, owner_id, created_at, updated_at
		FROM families
		WHERE code = $1
	`
	var family entity.Family
	err := r.db.GetContext(ctx, &family, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("FamilyRepository:GetByCode", err)
		return nil, err
	}
	return &family, nil
}

func (r *FamilyRepository) AddMember(ctx context.Context, member *entity.FamilyMember) error {
	query := `
		INSERT INTO family_members (family_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`
	err := r.db.ExecContext(ctx, query,
		member.FamilyID,
		member.UserID,
		member.Role,
		time.Now(),
	)
	if err != nil {
		logger.Error("FamilyRepository:AddMember", err)
	}
	return err
}

func (r *FamilyRepository) ListMembers(ctx context.Context, familyID uuid.UUID) ([]entity.FamilyMember, error) {
	query := `
		SELECT id, family_id, user_id, role, joined_at
		FROM family_members
		WHERE family_id = $1
		ORDER BY joined_at ASC
	`
	var members []entity.FamilyMember
	if err := r.db.SelectContext(ctx, &members, query, familyID); err != nil {
		logger.Error("FamilyRepository:ListMembers", err)
		return nil, err
	}
	return members, nil
}

func (r *FamilyRepository) GetMembership(ctx context.Context, familyID, userID uuid.UUID) (*entity.FamilyMember, error) {
	query := `
		SELECT id, family_id, user_id, role, joined_at
		FROM family_members
		WHERE family_id = $1 AND user_id = $2
	`
	var member entity.FamilyMember
	err := r.db.GetContext(ctx, &member, query, familyID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("FamilyRepository:GetMembership", err)
		return nil, err
	}
	return &member, nil
}
