package data

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carowners/api/internal/validator"
)

const (
	carBrandMaxLength = 20
	carModelMaxLength = 40

	// total_cost is numeric(10, 2).
	totalCostMaxDigits     = 10
	totalCostDecimalPlaces = 2
)

// Date is a calendar date without a time component, encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate returns the Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(validator.DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	t, err := validator.ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src any) error {
	switch x := src.(type) {
	case time.Time:
		y, m, day := x.Date()
		*d = NewDate(y, m, day)
		return nil
	case []byte:
		return d.scanString(string(x))
	case string:
		return d.scanString(x)
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) scanString(s string) error {
	if len(s) > len(validator.DateLayout) {
		s = s[:len(validator.DateLayout)]
	}
	t, err := validator.ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Car represents a single row in the "cars" table.
type Car struct {
	ID                 int64           `json:"id"`
	Brand              string          `json:"brand"`
	Model              string          `json:"model"`
	ProductionDate     Date            `json:"production_date"`
	ProblemDescription string          `json:"problem_description"`
	Repaired           bool            `json:"repaired"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	OwnerID            int64           `json:"owner"`
}

func (c Car) String() string {
	return c.Brand + " " + c.Model
}

func (c Car) columnValue(column string) string {
	switch column {
	case "id":
		return strconv.FormatInt(c.ID, 10)
	case "brand":
		return c.Brand
	case "model":
		return c.Model
	case "production_date":
		return c.ProductionDate.String()
	case "owner_id":
		return strconv.FormatInt(c.OwnerID, 10)
	}
	return ""
}

// CarInput holds the fields a client may send when writing a car. The
// repair fields are optional even on full writes.
type CarInput struct {
	Brand              *string          `json:"brand"`
	Model              *string          `json:"model"`
	ProductionDate     *string          `json:"production_date"`
	ProblemDescription *string          `json:"problem_description"`
	Repaired           *bool            `json:"repaired"`
	TotalCost          *decimal.Decimal `json:"total_cost"`
	Owner              *int64           `json:"owner"`
}

// Apply copies the provided fields onto car. Unless partial is set,
// brand, model, production_date and owner must be present.
func (in CarInput) Apply(v *validator.Validator, car *Car, partial bool) {
	applyField(v, "brand", in.Brand, &car.Brand, partial)
	applyField(v, "model", in.Model, &car.Model, partial)

	switch date, err := parseOptionalDate(in.ProductionDate); {
	case in.ProductionDate == nil:
		if !partial {
			v.AddError("production_date", validator.MsgRequired)
		}
	case err != nil:
		v.AddError("production_date", validator.MsgDateFormat)
	default:
		car.ProductionDate = date
	}

	applyField(v, "problem_description", in.ProblemDescription, &car.ProblemDescription, true)
	applyField(v, "repaired", in.Repaired, &car.Repaired, true)
	applyField(v, "total_cost", in.TotalCost, &car.TotalCost, true)
	applyField(v, "owner", in.Owner, &car.OwnerID, partial)
}

// ValidateCar checks a complete car before it is persisted.
func ValidateCar(v *validator.Validator, car *Car) {
	v.Check(car.Brand != "", "brand", validator.MsgBlank)
	v.Check(validator.MaxChars(car.Brand, carBrandMaxLength), "brand", maxLengthMessage(carBrandMaxLength))

	v.Check(car.Model != "", "model", validator.MsgBlank)
	v.Check(validator.MaxChars(car.Model, carModelMaxLength), "model", maxLengthMessage(carModelMaxLength))

	v.NotFuture("production_date", car.ProductionDate.Time)

	v.Check(!car.TotalCost.IsNegative(), "total_cost", "Ensure this value is greater than or equal to 0.")
	v.DecimalPrecision("total_cost", car.TotalCost, totalCostMaxDigits, totalCostDecimalPlaces)
	v.Check(car.OwnerID > 0, "owner", OwnerNotFoundMessage(car.OwnerID))
}

func parseOptionalDate(s *string) (Date, error) {
	if s == nil {
		return Date{}, nil
	}
	t, err := validator.ParseDate(*s)
	return Date{t}, err
}

// OwnerNotFoundMessage is reported under "owner" when a car references an
// owner id that does not exist.
func OwnerNotFoundMessage(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

// CarSearch is the filter configuration for listing cars.
var CarSearch = SearchSpec{
	Entity: "Car",
	Fields: []FilterField{
		{Param: "brand", Column: "brand", Match: MatchIExact},
		{Param: "model", Column: "model", Match: MatchIExact},
		{Param: "production_date", Column: "production_date", Match: MatchExact, Check: checkProductionDate},
		{Param: "owner", Column: "owner_id", Match: MatchExact, Check: checkID},
	},
	OrderingFields:  []string{"brand", "model", "production_date"},
	OrderingAliases: []string{"-production_date"},
}

// CarModel stores cars in Postgres.
type CarModel struct {
	DB *sql.DB
}

const carColumns = `id, brand, model, production_date, problem_description, repaired, total_cost, owner_id`

func scanCar(scan func(dest ...any) error, car *Car, extra ...any) error {
	dest := append(extra,
		&car.ID,
		&car.Brand,
		&car.Model,
		&car.ProductionDate,
		&car.ProblemDescription,
		&car.Repaired,
		&car.TotalCost,
		&car.OwnerID,
	)
	return scan(dest...)
}

// Insert adds a new car and writes the assigned id back into car.
func (m CarModel) Insert(ctx context.Context, car *Car) error {
	query := `
		INSERT INTO cars (brand, model, production_date, problem_description, repaired, total_cost, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query,
		car.Brand,
		car.Model,
		car.ProductionDate,
		car.ProblemDescription,
		car.Repaired,
		car.TotalCost,
		car.OwnerID,
	).Scan(&car.ID)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// Get retrieves a single car by primary key.
func (m CarModel) Get(ctx context.Context, id int64) (*Car, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var car Car
	err := scanCar(m.DB.QueryRowContext(ctx, query, id).Scan, &car)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &car, nil
}

// GetAll returns one page of cars matching filter, sorted per filters.
func (m CarModel) GetAll(ctx context.Context, filter Filter, filters Filters) ([]*Car, Metadata, error) {
	where, args := filter.where(1)
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), %s
		FROM cars
		%s
		ORDER BY %s %s, id ASC
		LIMIT $%d OFFSET $%d`, carColumns, where, filters.sortColumn(), filters.sortDirection(), len(args)+1, len(args)+2)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query, append(args, filters.limit(), filters.offset())...)
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	cars := []*Car{}
	for rows.Next() {
		var car Car
		if err := scanCar(rows.Scan, &car, &totalRecords); err != nil {
			return nil, Metadata{}, err
		}
		cars = append(cars, &car)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	if len(cars) == 0 && filters.offset() > 0 {
		totalRecords, err = count(ctx, m.DB, "cars", where, args)
		if err != nil {
			return nil, Metadata{}, err
		}
	}

	return cars, calculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

// Update saves car's fields over the stored row with the same id.
func (m CarModel) Update(ctx context.Context, car *Car) error {
	query := `
		UPDATE cars
		SET brand = $1, model = $2, production_date = $3, problem_description = $4,
			repaired = $5, total_cost = $6, owner_id = $7
		WHERE id = $8
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query,
		car.Brand,
		car.Model,
		car.ProductionDate,
		car.ProblemDescription,
		car.Repaired,
		car.TotalCost,
		car.OwnerID,
		car.ID,
	).Scan(&car.ID)
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

// Delete removes the car with the given id.
func (m CarModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}
	return deleteByID(ctx, m.DB, "cars", id)
}
