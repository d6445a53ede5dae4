package validation

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItem(t *testing.T) {
	tests := []struct {
		name    string
		fields  Fields
		partial bool
		want    Errors
	}{
		{
			name:   "valid",
			fields: Fields{"name": "X", "price": 10.0},
			want:   Errors{},
		},
		{
			name:   "valid with numeric string price",
			fields: Fields{"name": "X", "price": " 12.5 ", "description": "d"},
			want:   Errors{},
		},
		{
			name:   "missing everything on create",
			fields: Fields{},
			want:   Errors{"Name is required", "Price is required"},
		},
		{
			name:    "missing everything on update",
			fields:  Fields{},
			partial: true,
			want:    Errors{},
		},
		{
			name:   "empty name and invalid price",
			fields: Fields{"name": "", "price": "invalid"},
			want:   Errors{"Name cannot be empty", "Price must be a valid number"},
		},
		{
			name:   "whitespace name",
			fields: Fields{"name": "   ", "price": 1.0},
			want:   Errors{"Name cannot be empty"},
		},
		{
			name:   "null name",
			fields: Fields{"name": nil, "price": 1.0},
			want:   Errors{"Name cannot be empty"},
		},
		{
			name:   "non-string name",
			fields: Fields{"name": 5.0, "price": 1.0},
			want:   Errors{"Name must be a string"},
		},
		{
			name:   "zero price",
			fields: Fields{"name": "X", "price": 0.0},
			want:   Errors{"Price must be a positive number"},
		},
		{
			name:    "negative price on update",
			fields:  Fields{"price": json.Number("-3")},
			partial: true,
			want:    Errors{"Price must be a positive number"},
		},
		{
			name:   "boolean price",
			fields: Fields{"name": "X", "price": true},
			want:   Errors{"Price must be a valid number"},
		},
		{
			name:   "nan price",
			fields: Fields{"name": "X", "price": "NaN"},
			want:   Errors{"Price must be a valid number"},
		},
		{
			name:   "non-string description",
			fields: Fields{"name": "X", "price": 1.0, "description": 3.0},
			want:   Errors{"Description must be a string"},
		},
		{
			name:   "null description",
			fields: Fields{"name": "X", "price": 1.0, "description": nil},
			want:   Errors{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Item(tt.fields, tt.partial)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUser(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		login  bool
		want   Errors
	}{
		{
			name:   "valid registration",
			fields: Fields{"email": "a@b.com", "password": "pw123456", "name": "A"},
			want:   Errors{},
		},
		{
			name:   "valid login",
			fields: Fields{"email": "a@b.com", "password": "x"},
			login:  true,
			want:   Errors{},
		},
		{
			name:   "empty registration",
			fields: Fields{},
			want:   Errors{"Email is required", "Password is required", "Name is required"},
		},
		{
			name:   "empty login",
			fields: Fields{},
			login:  true,
			want:   Errors{"Email is required", "Password is required"},
		},
		{
			name:   "email without dot",
			fields: Fields{"email": "a@b", "password": "pw123456", "name": "A"},
			want:   Errors{"Invalid email format"},
		},
		{
			name:   "email without at",
			fields: Fields{"email": "a.b.com", "password": "pw123456", "name": "A"},
			want:   Errors{"Invalid email format"},
		},
		{
			name:   "short password",
			fields: Fields{"email": "a@b.com", "password": "12345", "name": "A"},
			want:   Errors{"Password must be at least 6 characters long"},
		},
		{
			name:   "short password counts characters",
			fields: Fields{"email": "a@b.com", "password": "ééééé", "name": "A"},
			want:   Errors{"Password must be at least 6 characters long"},
		},
		{
			name:   "blank name",
			fields: Fields{"email": "a@b.com", "password": "pw123456", "name": "  "},
			want:   Errors{"Name is required"},
		},
		{
			name:   "non-string values",
			fields: Fields{"email": 1.0, "password": 123456.0, "name": true},
			want:   Errors{"Invalid email format", "Password must be a string", "Name must be a string"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := User(tt.fields, tt.login)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePrice(t *testing.T) {
	price, ok := ParsePrice(json.Number("19.99"))
	assert.True(t, ok)
	assert.InDelta(t, 19.99, price, 1e-9)

	price, ok = ParsePrice("7")
	assert.True(t, ok)
	assert.Equal(t, 7.0, price)

	_, ok = ParsePrice(math.Inf(1))
	assert.False(t, ok)

	_, ok = ParsePrice(nil)
	assert.False(t, ok)
}

func TestErrors(t *testing.T) {
	assert.NoError(t, Errors{}.Err())

	err := Errors{"a", "b"}.Err()
	assert.EqualError(t, err, "a; b")
}

func TestString(t *testing.T) {
	fields := Fields{"name": "  X  ", "nil": nil, "num": 1.0}

	got, ok := String(fields, "name")
	assert.True(t, ok)
	assert.Equal(t, "X", got)

	_, ok = String(fields, "nil")
	assert.False(t, ok)
	_, ok = String(fields, "num")
	assert.False(t, ok)
	_, ok = String(fields, "missing")
	assert.False(t, ok)
}
