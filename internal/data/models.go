// internal/data/models.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/lib/pq"
)

// queryTimeout bounds every statement issued against Postgres.
const queryTimeout = 3 * time.Second

var (
	// ErrRecordNotFound is returned when a query finds no matching row.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicatePhone is returned when an owner's phone is already taken.
	ErrDuplicatePhone = errors.New("duplicate phone")
	// ErrOwnerNotFound is returned when a car references a missing owner.
	ErrOwnerNotFound = errors.New("owner does not exist")
	// ErrValueOutOfRange is returned when a number does not fit its column.
	ErrValueOutOfRange = errors.New("numeric value out of range")
)

// OwnerRepository is the storage contract for owners.
type OwnerRepository interface {
	Insert(ctx context.Context, owner *Owner) error
	Get(ctx context.Context, id int64) (*Owner, error)
	Update(ctx context.Context, owner *Owner) error
	Delete(ctx context.Context, id int64) error
	GetAll(ctx context.Context, filter Filter, filters Filters) ([]*Owner, Metadata, error)
}

// CarRepository is the storage contract for cars.
type CarRepository interface {
	Insert(ctx context.Context, car *Car) error
	Get(ctx context.Context, id int64) (*Car, error)
	Update(ctx context.Context, car *Car) error
	Delete(ctx context.Context, id int64) error
	GetAll(ctx context.Context, filter Filter, filters Filters) ([]*Car, Metadata, error)
}

// Models groups the repositories used by the HTTP handlers.
type Models struct {
	Owners OwnerRepository
	Cars   CarRepository
}

// NewModels constructs Postgres-backed Models on the given connection pool.
func NewModels(db *sql.DB) Models {
	return Models{
		Owners: OwnerModel{DB: db},
		Cars:   CarModel{DB: db},
	}
}

// Filters holds pagination and sorting parameters extracted from URL query strings.
type Filters struct {
	Page         int      // Current page number (1-indexed)
	PageSize     int      // Number of records per page
	Sort         string   // Column name to sort by (prefix with "-" for DESC)
	SortSafeList []string // Allowed sort values to prevent SQL injection
}

// sortColumn returns the validated column name for ORDER BY, defaulting to id.
func (f Filters) sortColumn() string {
	for _, safe := range f.SortSafeList {
		if f.Sort == safe {
			return strings.TrimPrefix(f.Sort, "-")
		}
	}
	return "id"
}

// sortDirection returns "ASC" or "DESC" based on the Sort prefix.
func (f Filters) sortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return "DESC"
	}
	return "ASC"
}

func (f Filters) limit() int { return f.PageSize }

func (f Filters) offset() int { return (f.Page - 1) * f.PageSize }

// Metadata contains pagination information for list results.
type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records,omitempty"`
}

// calculateMetadata computes page metadata from total record count and filter values.
func calculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords == 0 {
		return Metadata{}
	}
	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(pageSize))),
		TotalRecords: totalRecords,
	}
}

// translateError maps Postgres constraint violations onto the package's
// sentinel errors.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code.Name() {
	case "unique_violation":
		if pqErr.Table == "owners" || strings.Contains(pqErr.Constraint, "phone") {
			return ErrDuplicatePhone
		}
	case "foreign_key_violation":
		return ErrOwnerNotFound
	case "numeric_value_out_of_range":
		return ErrValueOutOfRange
	}
	return err
}
