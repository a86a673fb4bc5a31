package storage

import (
	"errors"

	"propiedades-api/models"
)

// Distinguished storage conditions. Everything else is a generic wrapped
// driver error.
var (
	ErrDuplicate = errors.New("storage: duplicate source_id")
	ErrNotFound  = errors.New("storage: property not found")
)

// ListFilter narrows a property listing query. Nil fields are not applied.
type ListFilter struct {
	Barrio       *string
	AmbientesMin *int
	PriceMaxUSD  *float64
	Limit        int
	Offset       int
}

// PropertyStore is the interface any property backend must satisfy.
// The HTTP layer depends on this, not on the Postgres implementation.
type PropertyStore interface {
	LoadBatch(props []*models.Property, batchSize int) (inserted, dropped int, err error)
	List(filter ListFilter) ([]*models.Property, error)
	GetByID(id int64) (*models.Property, error)
	Create(p *models.Property) (int64, error)
	Update(id int64, u *models.PropertyUpdate) (*models.Property, error)
	Delete(id int64) error
	BarrioStats() ([]models.BarrioStats, error)
	MarketEvolution() ([]models.MarketSnapshot, error)
	SimilarAveragePrice(barrio string, ambMin, ambMax, supMin, supMax int) (*float64, error)
	Close() error
}
