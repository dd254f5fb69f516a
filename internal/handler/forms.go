package handler

import (
    "math"
    "strconv"
    "strings"
    "unicode/utf8"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/carmarket/internal/model"
)

// FormErrors maps a form field name to the message shown next to it.
type FormErrors map[string]string

func (fe FormErrors) add(field, msg string) {
    if _, exists := fe[field]; !exists {
        fe[field] = msg
    }
}

// CarForm holds the raw text of the car form so it can be redisplayed
// exactly as typed.
type CarForm struct {
    Title           string
    Description     string
    Price           string
    Brand           string
    EngineCapacity  string
    Color           string
    YearManufacture string
    BodyType        string
    Type            string
}

func carFormFromRequest(c echo.Context) CarForm {
    v := func(k string) string { return strings.TrimSpace(c.FormValue(k)) }
    return CarForm{
        Title:           v("title"),
        Description:     v("description"),
        Price:           v("price"),
        Brand:           v("brand"),
        EngineCapacity:  v("engine_capacity"),
        Color:           v("color"),
        YearManufacture: v("year_manufacture"),
        BodyType:        v("body_type"),
        Type:            strings.ToLower(v("type")),
    }
}

func carFormFromCar(car *model.Car) CarForm {
    f := CarForm{
        Title:           car.Title,
        Price:           strconv.FormatFloat(car.Price, 'f', 2, 64),
        Brand:           car.Brand,
        EngineCapacity:  strconv.FormatFloat(car.EngineCapacity, 'f', -1, 64),
        Color:           car.Color,
        YearManufacture: strconv.FormatUint(uint64(car.YearManufacture), 10),
        BodyType:        car.BodyType,
        Type:            string(car.Type),
    }
    if car.Description != nil {
        f.Description = *car.Description
    }
    return f
}

// maxPrice is the largest value a decimal(10,2) column holds.
const maxPrice = 99999999.99

// maxYear bounds year_manufacture to a non-negative small integer.
const maxYear = 32767

// Apply validates f and, when every field is valid, copies the values onto
// car.  Owner, availability, image and timestamps are never touched.
func (f CarForm) Apply(car *model.Car) FormErrors {
    errs := FormErrors{}

    requireText(errs, "title", f.Title, 500)
    requireText(errs, "brand", f.Brand, 100)
    requireText(errs, "color", f.Color, 100)
    requireText(errs, "body_type", f.BodyType, 100)

    price, err := strconv.ParseFloat(f.Price, 64)
    switch {
    case f.Price == "":
        errs.add("price", "This field is required.")
    case err != nil || math.IsNaN(price) || math.IsInf(price, 0):
        errs.add("price", "Enter a number.")
    case price < 0:
        errs.add("price", "Price cannot be negative.")
    case price > maxPrice:
        errs.add("price", "Ensure that there are no more than 10 digits in total.")
    case decimals(f.Price) > 2:
        errs.add("price", "Ensure that there are no more than 2 decimal places.")
    }

    engine, err := strconv.ParseFloat(f.EngineCapacity, 64)
    switch {
    case f.EngineCapacity == "":
        errs.add("engine_capacity", "This field is required.")
    case err != nil || math.IsNaN(engine) || math.IsInf(engine, 0):
        errs.add("engine_capacity", "Enter a number.")
    case engine < 0:
        errs.add("engine_capacity", "Engine capacity cannot be negative.")
    }

    year, err := strconv.ParseUint(f.YearManufacture, 10, 16)
    switch {
    case f.YearManufacture == "":
        errs.add("year_manufacture", "This field is required.")
    case err != nil || year > maxYear:
        errs.add("year_manufacture", "Enter a whole number between 0 and 32767.")
    }

    listing := model.ListingType(f.Type)
    if !listing.Valid() {
        errs.add("type", "Select rent or sale.")
    }

    if len(errs) > 0 {
        return errs
    }

    car.Title = f.Title
    car.Description = nil
    if f.Description != "" {
        d := f.Description
        car.Description = &d
    }
    car.Price = price
    car.Brand = f.Brand
    car.EngineCapacity = engine
    car.Color = f.Color
    car.YearManufacture = uint16(year)
    car.BodyType = f.BodyType
    car.Type = listing
    return nil
}

func requireText(errs FormErrors, field, value string, max int) {
    switch {
    case value == "":
        errs.add(field, "This field is required.")
    case utf8.RuneCountInString(value) > max:
        errs.add(field, "Ensure this value has at most "+strconv.Itoa(max)+" characters.")
    }
}

func decimals(s string) int {
    if i := strings.IndexByte(s, '.'); i >= 0 {
        return len(s) - i - 1
    }
    return 0
}

// validateComment checks the deal request form.
func validateComment(comment string) FormErrors {
    if strings.TrimSpace(comment) == "" {
        return FormErrors{"comment": "This field is required."}
    }
    return nil
}
