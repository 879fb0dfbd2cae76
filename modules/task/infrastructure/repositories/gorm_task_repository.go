package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sessioncore/server/modules/task/domain/entities"
	"sessioncore/server/seedwork/domain"
)

// GormTaskRepository is the Postgres-backed TaskRepository.
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository constructs a GormTaskRepository.
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) Create(ctx context.Context, task *entities.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*entities.Task, error) {
	var task entities.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewDomainError("TASK_NOT_FOUND", domain.ErrNotFound, "task not found", err)
		}
		return nil, err
	}
	return &task, nil
}

// Update enforces that a task never transitions out of a terminal state
// (spec §8), regardless of what mutate would otherwise do.
func (r *GormTaskRepository) Update(ctx context.Context, id string, mutate func(*entities.Task) error) (*entities.Task, error) {
	var result *entities.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task entities.Task
		if err := tx.Where("id = ?", id).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewDomainError("TASK_NOT_FOUND", domain.ErrNotFound, "task not found", err)
			}
			return err
		}
		if task.Status.IsTerminal() {
			return domain.NewDomainError("TASK_TERMINAL", domain.ErrInvalidStateTransition, "task is already in a terminal state", nil)
		}
		if err := mutate(&task); err != nil {
			return err
		}
		if err := tx.Save(&task).Error; err != nil {
			return err
		}
		result = &task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
