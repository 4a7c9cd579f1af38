package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourapi/internal/apperror"
	"tourapi/internal/model"
)

type signup struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func TestStructValid(t *testing.T) {
	v := New()
	err := v.Struct(signup{Name: "a", Email: "a@example.com", Password: "pass1234", PasswordConfirm: "pass1234"})
	assert.NoError(t, err)
}

func TestStructMessages(t *testing.T) {
	v := New()
	err := v.Struct(signup{Email: "nope", Password: "short", PasswordConfirm: "other"})
	require.Error(t, err)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Invalid input data. name is required. Please provide a valid email. password must have at least 8 characters. Passwords are not the same!", appErr.Message)
}

func TestTourDiscountBelowPrice(t *testing.T) {
	v := New()
	discount := 600.0
	tour := model.Tour{
		Name:           "The Forest Hiker",
		Duration:       5,
		MaxGroupSize:   25,
		Difficulty:     model.DifficultyEasy,
		RatingsAverage: 4.5,
		Price:          397,
		PriceDiscount:  &discount,
		Summary:        "Breathtaking hike",
		ImageCover:     "tour-1-cover.jpg",
	}
	err := v.Struct(tour)
	require.Error(t, err)
	appErr, _ := apperror.As(err)
	assert.Contains(t, appErr.Message, "should be below price")

	discount = 100
	assert.NoError(t, v.Struct(tour))

	tour.PriceDiscount = nil
	tour.Difficulty = "extreme"
	err = v.Struct(tour)
	require.Error(t, err)
	appErr, _ = apperror.As(err)
	assert.Contains(t, appErr.Message, "difficulty must be one of: easy, medium, difficult")
}

func TestReviewRules(t *testing.T) {
	v := New()
	r := model.Review{
		Review: "Great",
		Rating: 6,
		TourID: "5c88fa8cf4afda39709c2955",
		UserID: "5c8a1d5b0190b214360dc057",
	}
	err := v.Struct(r)
	require.Error(t, err)
	appErr, _ := apperror.As(err)
	assert.Contains(t, appErr.Message, "rating must be 5 or below")
	assert.Contains(t, appErr.Message, "tour must be a valid id")
	assert.Contains(t, appErr.Message, "userID must be a valid id")
}

func TestVar(t *testing.T) {
	v := New()
	assert.NoError(t, v.Var("year", 2021, "gte=1970,lte=9999"))

	err := v.Var("year", 10, "gte=1970")
	require.Error(t, err)
	appErr, _ := apperror.As(err)
	assert.Equal(t, "Invalid input data. year must be 1970 or above", appErr.Message)
}

func TestTranslatePassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, Translate(plain))
}
