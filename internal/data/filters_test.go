package data

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carowners/api/internal/validator"
)

func TestSearchSpecParseFilter(t *testing.T) {
	t.Parallel()

	tomorrow := validator.Today().AddDate(0, 0, 1).Format(validator.DateLayout)

	tests := []struct {
		name     string
		spec     SearchSpec
		query    string
		want     []Condition
		wantErrs map[string]string
	}{
		{
			name:  "no parameters",
			spec:  OwnerSearch,
			query: "",
		},
		{
			name:  "name and surname",
			spec:  OwnerSearch,
			query: "name=Andrzej&surname=Starczyk",
			want: []Condition{
				{Column: "name", Match: MatchIExact, Value: "Andrzej"},
				{Column: "surname", Match: MatchIExact, Value: "Starczyk"},
			},
		},
		{
			name:  "unknown and empty parameters ignored",
			spec:  OwnerSearch,
			query: "nickname=x&surname=&phone=123456789",
			want: []Condition{
				{Column: "phone", Match: MatchExact, Value: "123456789"},
			},
		},
		{
			name:     "invalid phone",
			spec:     OwnerSearch,
			query:    "phone=123",
			want:     []Condition{{Column: "phone", Match: MatchExact, Value: "123"}},
			wantErrs: map[string]string{"phone": validator.MsgPhoneTooShort},
		},
		{
			name:     "invalid name",
			spec:     OwnerSearch,
			query:    "name=@%23$",
			want:     []Condition{{Column: "name", Match: MatchIExact, Value: "@#$"}},
			wantErrs: map[string]string{"name": "name can contain only letters and '-' without whitespaces"},
		},
		{
			name:  "car date and owner are typed",
			spec:  CarSearch,
			query: "brand=ford&production_date=2023-01-01&owner=7",
			want: []Condition{
				{Column: "brand", Match: MatchIExact, Value: "ford"},
				{Column: "production_date", Match: MatchExact, Value: NewDate(2023, time.January, 1)},
				{Column: "owner_id", Match: MatchExact, Value: int64(7)},
			},
		},
		{
			name:     "future production date",
			spec:     CarSearch,
			query:    "production_date=" + tomorrow,
			wantErrs: map[string]string{"production_date": validator.MsgDateFromFuture},
		},
		{
			name:     "malformed production date",
			spec:     CarSearch,
			query:    "production_date=yesterday",
			wantErrs: map[string]string{"production_date": validator.MsgDateFormat},
		},
		{
			name:     "non numeric owner",
			spec:     CarSearch,
			query:    "owner=abc",
			wantErrs: map[string]string{"owner": validator.MsgIntegerRequired},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			qs, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			v := validator.New()
			filter := tt.spec.ParseFilter(qs, v)

			if tt.wantErrs != nil {
				assert.Equal(t, tt.wantErrs, v.Errors)
				if tt.want == nil {
					return
				}
			} else {
				assert.True(t, v.Valid(), "unexpected errors: %v", v.Errors)
			}
			assert.Equal(t, tt.want, filter.Conditions)
		})
	}
}

func TestSearchSpecParseSort(t *testing.T) {
	t.Parallel()

	v := validator.New()
	assert.Equal(t, "", OwnerSearch.ParseSort(url.Values{}, v))
	assert.Equal(t, "surname", OwnerSearch.ParseSort(url.Values{"ordering": {"surname"}}, v))
	assert.Equal(t, "-production_date", CarSearch.ParseSort(url.Values{"ordering": {"-production_date"}}, v))
	assert.True(t, v.Valid())

	OwnerSearch.ParseSort(url.Values{"ordering": {"invalid ordering"}}, v)
	assert.Equal(t, "Ordering should be one of the following: name, surname", v.Errors["ordering"])

	v = validator.New()
	CarSearch.ParseSort(url.Values{"ordering": {"owner"}}, v)
	assert.Equal(t, "Ordering should be one of the following: brand, model, production_date", v.Errors["ordering"])
}

func TestFilterWhere(t *testing.T) {
	t.Parallel()

	where, args := Filter{}.where(1)
	assert.Empty(t, where)
	assert.Empty(t, args)

	filter := Filter{Conditions: []Condition{
		{Column: "name", Match: MatchIExact, Value: "andrzej"},
		{Column: "phone", Match: MatchExact, Value: "123456789"},
	}}
	where, args = filter.where(1)
	assert.Equal(t, "WHERE UPPER(name) = UPPER($1) AND phone = $2", where)
	assert.Equal(t, []any{"andrzej", "123456789"}, args)

	where, _ = filter.where(3)
	assert.Equal(t, "WHERE UPPER(name) = UPPER($3) AND phone = $4", where)
}

func TestFilterMatches(t *testing.T) {
	t.Parallel()

	owner := Owner{ID: 1, Name: "Andrzej", Surname: "Starczyk", Phone: "123456789"}
	car := Car{ID: 2, Brand: "Ford", Model: "Focus", ProductionDate: NewDate(2023, time.January, 1), OwnerID: 1}

	assert.True(t, Filter{}.matches(owner))
	assert.True(t, Filter{Conditions: []Condition{
		{Column: "name", Match: MatchIExact, Value: "andrzej"},
		{Column: "surname", Match: MatchIExact, Value: "STARCZYK"},
	}}.matches(owner))
	assert.False(t, Filter{Conditions: []Condition{
		{Column: "name", Match: MatchIExact, Value: "andrzej"},
		{Column: "phone", Match: MatchExact, Value: "000000000"},
	}}.matches(owner))
	assert.False(t, Filter{Conditions: []Condition{
		{Column: "name", Match: MatchIExact, Value: "andrz"},
	}}.matches(owner), "substrings must not match")

	assert.True(t, Filter{Conditions: []Condition{
		{Column: "production_date", Match: MatchExact, Value: NewDate(2023, time.January, 1)},
		{Column: "owner_id", Match: MatchExact, Value: int64(1)},
	}}.matches(car))
	assert.False(t, Filter{Conditions: []Condition{
		{Column: "owner_id", Match: MatchExact, Value: int64(3)},
	}}.matches(car))
}

func TestFiltersSort(t *testing.T) {
	t.Parallel()

	f := Filters{Sort: "-production_date", SortSafeList: CarSearch.SortSafeList()}
	assert.Equal(t, "production_date", f.sortColumn())
	assert.Equal(t, "DESC", f.sortDirection())

	f = Filters{Sort: "owner_id; DROP TABLE cars", SortSafeList: CarSearch.SortSafeList()}
	assert.Equal(t, "id", f.sortColumn())
	assert.Equal(t, "ASC", f.sortDirection())
}

func TestCalculateMetadata(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Metadata{}, calculateMetadata(0, 1, 10))
	assert.Equal(t, Metadata{CurrentPage: 2, PageSize: 10, FirstPage: 1, LastPage: 3, TotalRecords: 21}, calculateMetadata(21, 2, 10))
}
