package repository

import (
	"context"

	"cocinaclinica/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngredienteRepository maneja las líneas de receta (receta_ingredientes).
type IngredienteRepository interface {
	Create(ctx context.Context, ing *model.RecetaIngrediente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RecetaIngrediente, error)
	ListByReceta(ctx context.Context, recetaID uuid.UUID) ([]model.RecetaIngrediente, error)
	Update(ctx context.Context, ing *model.RecetaIngrediente) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ingredienteRepo struct{ db *gorm.DB }

func NewIngredienteRepository(db *gorm.DB) IngredienteRepository {
	return &ingredienteRepo{db: db}
}

func (r *ingredienteRepo) Create(ctx context.Context, ing *model.RecetaIngrediente) error {
	return r.db.WithContext(ctx).Create(ing).Error
}

func (r *ingredienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RecetaIngrediente, error) {
	var ing model.RecetaIngrediente
	err := r.db.WithContext(ctx).First(&ing, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

func (r *ingredienteRepo) ListByReceta(ctx context.Context, recetaID uuid.UUID) ([]model.RecetaIngrediente, error) {
	var lineas []model.RecetaIngrediente
	err := r.db.WithContext(ctx).
		Where("receta_id = ?", recetaID).
		Order("orden ASC").
		Find(&lineas).Error
	return lineas, err
}

func (r *ingredienteRepo) Update(ctx context.Context, ing *model.RecetaIngrediente) error {
	return r.db.WithContext(ctx).Save(ing).Error
}

func (r *ingredienteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.RecetaIngrediente{}, "id = ?", id).Error
}
