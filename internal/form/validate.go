package form

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/blackwell-systems/booklog/internal/catalog"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("calendardate", validateCalendarDate)
	_ = validate.RegisterValidation("notblank", validateNotBlank)
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := catalog.ParseDate(fl.Field().String())
	return err == nil
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// checked is the shape the validator runs over.
type checked struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	ISBN     string `json:"isbn"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Notes    string `json:"notes" validate:"notblank"`
	DateRead string `json:"dateRead" validate:"required,calendardate"`
}

var messages = map[string]string{
	"title":    "Title is required",
	"author":   "Author is required",
	"rating":   "Rating must be between 1 and 5",
	"notes":    "Notes are required",
	"dateRead": "Date read must be a real date in YYYY-MM-DD form",
}

// Validate checks in and returns the cleaned fields. On failure the error
// is a *Error naming every bad field, in form order.
func Validate(in Input) (catalog.Fields, error) {
	c := checked{
		Title:    strings.TrimSpace(in.Title),
		Author:   strings.TrimSpace(in.Author),
		ISBN:     strings.TrimSpace(in.ISBN),
		Notes:    in.Notes,
		DateRead: strings.TrimSpace(in.DateRead),
	}

	var ferr Error
	rating, err := strconv.Atoi(strings.TrimSpace(in.Rating))
	ratingParsed := err == nil
	if ratingParsed {
		c.Rating = rating
	}

	failed := map[string]bool{}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return catalog.Fields{}, err
		}
		for _, fe := range verrs {
			failed[fe.Field()] = true
		}
	}
	if !ratingParsed {
		failed["rating"] = true
	}

	for _, name := range []string{"title", "author", "rating", "notes", "dateRead"} {
		if !failed[name] {
			continue
		}
		msg := messages[name]
		if name == "rating" && !ratingParsed {
			msg = "Rating must be a whole number from 1 to 5"
		}
		ferr.Fields = append(ferr.Fields, FieldError{Field: name, Message: msg})
	}
	if len(ferr.Fields) > 0 {
		return catalog.Fields{}, &ferr
	}

	return catalog.Fields{
		Title:    c.Title,
		Author:   c.Author,
		ISBN:     c.ISBN,
		Rating:   c.Rating,
		Notes:    c.Notes,
		DateRead: c.DateRead,
	}, nil
}

// ValidateBook checks the editable fields of an already built book, such
// as one read from an import file.
func ValidateBook(b catalog.Book) error {
	_, err := Validate(FromBook(b))
	return err
}
