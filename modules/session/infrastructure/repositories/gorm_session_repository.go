package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sessioncore/server/modules/session/domain/entities"
	"sessioncore/server/modules/session/domain/repositories"
	"sessioncore/server/seedwork/domain"
)

// GormSessionRepository is the Postgres-backed SessionRepository.
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository constructs a GormSessionRepository against an
// explicit *gorm.DB handle (no package-level singleton; the container
// builds the handle once, see the container.go entry in DESIGN.md).
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Create(ctx context.Context, session *entities.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func scopeOwner(tx *gorm.DB, owner repositories.OwnerFilter) *gorm.DB {
	if owner.IsInternal() {
		return tx
	}
	return tx.Where("owner_id = ?", owner.OwnerID())
}

func (r *GormSessionRepository) GetByID(ctx context.Context, id string, owner repositories.OwnerFilter) (*entities.Session, error) {
	var session entities.Session
	q := scopeOwner(r.db.WithContext(ctx), owner).Where("id = ?", id)
	if err := q.First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewDomainError("SESSION_NOT_FOUND", domain.ErrNotFound, "session not found", err)
		}
		return nil, err
	}
	return &session, nil
}

func (r *GormSessionRepository) ListByOwner(ctx context.Context, owner repositories.OwnerFilter, limit, offset int) ([]entities.Session, error) {
	var sessions []entities.Session
	q := scopeOwner(r.db.WithContext(ctx), owner).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *GormSessionRepository) Update(ctx context.Context, id string, owner repositories.OwnerFilter, mutate func(*entities.Session) error) (*entities.Session, error) {
	var result *entities.Session
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session entities.Session
		q := scopeOwner(tx, owner).Where("id = ?", id)
		if err := q.First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewDomainError("SESSION_NOT_FOUND", domain.ErrNotFound, "session not found", err)
			}
			return err
		}
		if err := mutate(&session); err != nil {
			return err
		}
		if err := tx.Save(&session).Error; err != nil {
			return err
		}
		result = &session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *GormSessionRepository) Delete(ctx context.Context, id string, owner repositories.OwnerFilter) error {
	q := scopeOwner(r.db.WithContext(ctx), owner).Where("id = ?", id)
	res := q.Delete(&entities.Session{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NewDomainError("SESSION_NOT_FOUND", domain.ErrNotFound, "session not found", nil)
	}
	return nil
}

func (r *GormSessionRepository) UpdateTemplate(ctx context.Context, id, templateID string, owner repositories.OwnerFilter) error {
	q := scopeOwner(r.db.WithContext(ctx), owner).Where("id = ?", id)
	res := q.Model(&entities.Session{}).Update("template_id", templateID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NewDomainError("SESSION_NOT_FOUND", domain.ErrNotFound, "session not found", nil)
	}
	return nil
}
