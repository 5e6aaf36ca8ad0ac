package data

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carowners/api/internal/validator"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestOwnerModelInsert(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	m := OwnerModel{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO owners (name, surname, phone) VALUES ($1, $2, $3) RETURNING id`)).
		WithArgs("Andrzej", "Starczyk", "123456789").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	owner := &Owner{Name: "Andrzej", Surname: "Starczyk", Phone: "123456789"}
	require.NoError(t, m.Insert(context.Background(), owner))
	assert.Equal(t, int64(7), owner.ID)
}

func TestOwnerModelInsertDuplicatePhone(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	m := OwnerModel{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO owners`)).
		WillReturnError(&pq.Error{Code: "23505", Table: "owners", Constraint: "owners_phone_key"})

	err := m.Insert(context.Background(), &Owner{Name: "Jan", Surname: "Nowak", Phone: "123456789"})
	assert.ErrorIs(t, err, ErrDuplicatePhone)
}

func TestOwnerModelGet(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	m := OwnerModel{DB: db}

	query := regexp.QuoteMeta(`SELECT id, name, surname, phone FROM owners WHERE id = $1`)
	mock.ExpectQuery(query).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "surname", "phone"}).
			AddRow(int64(1), "Andrzej", "Starczyk", "123456789"))
	mock.ExpectQuery(query).
		WithArgs(int64(2)).
		WillReturnError(sql.ErrNoRows)

	owner, err := m.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &Owner{ID: 1, Name: "Andrzej", Surname: "Starczyk", Phone: "123456789"}, owner)

	_, err = m.Get(context.Background(), 2)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = m.Get(context.Background(), 0)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestOwnerModelGetAll(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	m := OwnerModel{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT count(*) OVER(), id, name, surname, phone FROM owners ` +
			`WHERE UPPER(name) = UPPER($1) AND UPPER(surname) = UPPER($2) ` +
			`ORDER BY surname ASC, id ASC LIMIT $3 OFFSET $4`)).
		WithArgs("andrzej", "starczyk", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"count", "id", "name", "surname", "phone"}).
			AddRow(1, int64(3), "Andrzej", "Starczyk", "123456789"))

	v := validator.New()
	filter := OwnerSearch.ParseFilter(map[string][]string{"name": {"andrzej"}, "surname": {"starczyk"}}, v)
	require.True(t, v.Valid())

	owners, meta, err := m.GetAll(context.Background(), filter, Filters{
		Page:         1,
		PageSize:     10,
		Sort:         "surname",
		SortSafeList: OwnerSearch.SortSafeList(),
	})
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, "Andrzej Starczyk", owners[0].String())
	assert.Equal(t, 1, meta.TotalRecords)
	assert.Equal(t, 1, meta.LastPage)
}

func TestOwnerModelGetAllPastLastPage(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	m := OwnerModel{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) OVER(), id, name, surname, phone FROM owners ORDER BY id ASC, id ASC LIMIT $1 OFFSET $2`)).
		WithArgs(10, 40).
		WillReturnRows(sqlmock.NewRows([]string{"count", "id", "name", "surname", "phone"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM owners`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	owners, meta, err := m.GetAll(context.Background(), Filter{}, Filters{Page: 5, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, owners)
	assert.Equal(t, 12, meta.TotalRecords)
	assert.Equal(t, 2, meta.LastPage)
}

func TestOwnerModelUpdate(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	m := OwnerModel{DB: db}

	query := regexp.QuoteMeta(`UPDATE owners SET name = $1, surname = $2, phone = $3 WHERE id = $4 RETURNING id`)
	mock.ExpectQuery(query).
		WithArgs("Krzysztof", "Starczyk", "123456789", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(query).
		WillReturnError(sql.ErrNoRows)

	require.NoError(t, m.Update(context.Background(), &Owner{ID: 1, Name: "Krzysztof", Surname: "Starczyk", Phone: "123456789"}))
	assert.ErrorIs(t, m.Update(context.Background(), &Owner{ID: 2}), ErrRecordNotFound)
}

func TestOwnerModelDelete(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	m := OwnerModel{DB: db}

	query := regexp.QuoteMeta(`DELETE FROM owners WHERE id = $1`)
	mock.ExpectExec(query).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, m.Delete(context.Background(), 1))
	assert.ErrorIs(t, m.Delete(context.Background(), 2), ErrRecordNotFound)
	assert.ErrorIs(t, m.Delete(context.Background(), -1), ErrRecordNotFound)
}

func TestValidateOwner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		owner Owner
		want  map[string]string
	}{
		{
			name:  "valid",
			owner: Owner{Name: "Adam", Surname: "Knafel", Phone: "123456789"},
		},
		{
			name:  "name with digits",
			owner: Owner{Name: "123", Surname: "Knafel", Phone: "123456789"},
			want:  map[string]string{"name": "name can contain only letters and '-' without whitespaces"},
		},
		{
			name:  "surname with digits reported after valid name",
			owner: Owner{Name: "Adam", Surname: "123", Phone: "123456789"},
			want:  map[string]string{"surname": "surname can contain only letters and '-' without whitespaces"},
		},
		{
			name:  "phone letters",
			owner: Owner{Name: "Adam", Surname: "Knafel", Phone: "abc"},
			want:  map[string]string{"phone": validator.MsgPhoneDigits},
		},
		{
			name:  "phone too short",
			owner: Owner{Name: "Adam", Surname: "Knafel", Phone: "1234"},
			want:  map[string]string{"phone": validator.MsgPhoneTooShort},
		},
		{
			name:  "phone too long",
			owner: Owner{Name: "Adam", Surname: "Knafel", Phone: "123456789123"},
			want:  map[string]string{"phone": validator.MsgPhoneTooLong},
		},
		{
			name:  "blank phone is too short",
			owner: Owner{Name: "Adam", Surname: "Knafel", Phone: ""},
			want:  map[string]string{"phone": validator.MsgPhoneTooShort},
		},
		{
			name:  "blank name",
			owner: Owner{Surname: "Knafel", Phone: "123456789"},
			want:  map[string]string{"name": validator.MsgBlank},
		},
		{
			name:  "name too long",
			owner: Owner{Name: strings.Repeat("a", 21), Surname: "Knafel", Phone: "123456789"},
			want:  map[string]string{"name": "Ensure this field has no more than 20 characters."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := validator.New()
			ValidateOwner(v, &tt.owner)
			assert.Equal(t, tt.want, v.First())
		})
	}
}

func TestOwnerInputApply(t *testing.T) {
	t.Parallel()

	name := "Krzysztof"

	v := validator.New()
	owner := Owner{ID: 1, Name: "Andrzej", Surname: "Starczyk", Phone: "123456789"}
	OwnerInput{Name: &name}.Apply(v, &owner, true)
	assert.True(t, v.Valid())
	assert.Equal(t, Owner{ID: 1, Name: "Krzysztof", Surname: "Starczyk", Phone: "123456789"}, owner)

	v = validator.New()
	OwnerInput{Name: &name}.Apply(v, &Owner{}, false)
	assert.Equal(t, map[string]string{"surname": validator.MsgRequired, "phone": validator.MsgRequired}, v.Errors)
}
