package api

import (
	"errors"
	"math"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// DeadlineLayout is the date format of Job.Deadline.
const DeadlineLayout = "2006-01-02"

func categoryList() []interface{} {
	out := make([]interface{}, len(Categories))
	for i, c := range Categories {
		out[i] = c
	}
	return out
}

func finite(value interface{}) error {
	f, _ := value.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.New("must be a number")
	}
	return nil
}

// Validate checks a job before it is posted or updated.
func (j Job) Validate() error {
	return validation.ValidateStruct(&j,
		validation.Field(&j.JobTitle, validation.Required, validation.Length(1, 120)),
		validation.Field(&j.JobCategory, validation.Required, validation.In(categoryList()...).Error("must be one of the listed categories")),
		validation.Field(&j.Description, validation.Required),
		validation.Field(&j.CoverImage, validation.Required, is.URL),
		validation.Field(&j.EmployerEmail, validation.Required, is.Email),
		validation.Field(&j.MinPrice,
			validation.By(finite),
			validation.Min(0.0).Error("must be a positive number"),
		),
		validation.Field(&j.MaxPrice,
			validation.By(finite),
			validation.Min(0.0).Error("must be a positive number"),
			validation.By(func(interface{}) error {
				if j.MinPrice >= j.MaxPrice {
					return errors.New("must be greater than the minimum price")
				}
				return nil
			}),
		),
		validation.Field(&j.Deadline, validation.Required, validation.Date(DeadlineLayout).Error("must be a date (YYYY-MM-DD)")),
	)
}
