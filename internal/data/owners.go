// Package data provides the owner and car models, their validation rules,
// the query filter builder, and the Postgres and in-memory stores.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/carowners/api/internal/validator"
)

const (
	ownerNameMaxLength    = 20
	ownerSurnameMaxLength = 20
)

// Owner represents a single row in the "owners" table.
type Owner struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Phone   string `json:"phone"`
}

func (o Owner) String() string {
	return o.Name + " " + o.Surname
}

func (o Owner) columnValue(column string) string {
	switch column {
	case "id":
		return strconv.FormatInt(o.ID, 10)
	case "name":
		return o.Name
	case "surname":
		return o.Surname
	case "phone":
		return o.Phone
	}
	return ""
}

// OwnerInput holds the fields a client may send when writing an owner.
// Nil means "not provided".
type OwnerInput struct {
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
	Phone   *string `json:"phone"`
}

// Apply copies the provided fields onto owner. Unless partial is set,
// every field must be present.
func (in OwnerInput) Apply(v *validator.Validator, owner *Owner, partial bool) {
	applyField(v, "name", in.Name, &owner.Name, partial)
	applyField(v, "surname", in.Surname, &owner.Surname, partial)
	applyField(v, "phone", in.Phone, &owner.Phone, partial)
}

// ValidateOwner checks a complete owner before it is persisted.
func ValidateOwner(v *validator.Validator, owner *Owner) {
	v.Check(owner.Name != "", "name", validator.MsgBlank)
	v.Check(validator.MaxChars(owner.Name, ownerNameMaxLength), "name", maxLengthMessage(ownerNameMaxLength))
	v.PersonName("name", owner.Name)

	v.Check(owner.Surname != "", "surname", validator.MsgBlank)
	v.Check(validator.MaxChars(owner.Surname, ownerSurnameMaxLength), "surname", maxLengthMessage(ownerSurnameMaxLength))
	v.PersonName("surname", owner.Surname)

	v.Phone("phone", owner.Phone)
}

// OwnerSearch is the filter configuration for listing owners.
var OwnerSearch = SearchSpec{
	Entity: "Owner",
	Fields: []FilterField{
		{Param: "name", Column: "name", Match: MatchIExact, Check: checkPersonName},
		{Param: "surname", Column: "surname", Match: MatchIExact, Check: checkPersonName},
		{Param: "phone", Column: "phone", Match: MatchExact, Check: checkPhone},
	},
	OrderingFields: []string{"name", "surname"},
}

// OwnerModel stores owners in Postgres.
type OwnerModel struct {
	DB *sql.DB
}

// Insert adds a new owner and writes the assigned id back into owner.
func (m OwnerModel) Insert(ctx context.Context, owner *Owner) error {
	query := `
		INSERT INTO owners (name, surname, phone)
		VALUES ($1, $2, $3)
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query, owner.Name, owner.Surname, owner.Phone).Scan(&owner.ID)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// Get retrieves a single owner by primary key.
func (m OwnerModel) Get(ctx context.Context, id int64) (*Owner, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT id, name, surname, phone
		FROM owners
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var owner Owner
	err := m.DB.QueryRowContext(ctx, query, id).Scan(&owner.ID, &owner.Name, &owner.Surname, &owner.Phone)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &owner, nil
}

// GetAll returns one page of owners matching filter, sorted per filters.
func (m OwnerModel) GetAll(ctx context.Context, filter Filter, filters Filters) ([]*Owner, Metadata, error) {
	where, args := filter.where(1)
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, name, surname, phone
		FROM owners
		%s
		ORDER BY %s %s, id ASC
		LIMIT $%d OFFSET $%d`, where, filters.sortColumn(), filters.sortDirection(), len(args)+1, len(args)+2)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query, append(args, filters.limit(), filters.offset())...)
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	owners := []*Owner{}
	for rows.Next() {
		var owner Owner
		err := rows.Scan(&totalRecords, &owner.ID, &owner.Name, &owner.Surname, &owner.Phone)
		if err != nil {
			return nil, Metadata{}, err
		}
		owners = append(owners, &owner)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	// A page past the end yields no rows, so the window count is lost.
	if len(owners) == 0 && filters.offset() > 0 {
		totalRecords, err = count(ctx, m.DB, "owners", where, args)
		if err != nil {
			return nil, Metadata{}, err
		}
	}

	return owners, calculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

// Update saves owner's fields over the stored row with the same id.
func (m OwnerModel) Update(ctx context.Context, owner *Owner) error {
	query := `
		UPDATE owners
		SET name = $1, surname = $2, phone = $3
		WHERE id = $4
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query, owner.Name, owner.Surname, owner.Phone, owner.ID).Scan(&owner.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return translateError(err)
		}
	}
	return nil
}

// Delete removes the owner with the given id. The foreign key on cars
// cascades, removing the owner's cars in the same statement.
func (m OwnerModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}
	return deleteByID(ctx, m.DB, "owners", id)
}

func deleteByID(ctx context.Context, db *sql.DB, table string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func count(ctx context.Context, db *sql.DB, table, where string, args []any) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM %s %s`, table, where), args...).Scan(&n)
	return n, err
}

func applyField[T any](v *validator.Validator, key string, src *T, dst *T, partial bool) {
	if src == nil {
		if !partial {
			v.AddError(key, validator.MsgRequired)
		}
		return
	}
	*dst = *src
}

func maxLengthMessage(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}
