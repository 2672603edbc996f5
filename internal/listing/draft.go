package listing

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Draft is the transient input of one listing submission.
type Draft struct {
	Title              string `json:"title"               validate:"required,max=255"`
	CategoryID         string `json:"category_id"         validate:"required"`
	Price              string `json:"price"               validate:"required,price"`
	CurrencyID         string `json:"currency_id"         validate:"required,currency"`
	Quantity           int    `json:"available_quantity"  validate:"omitempty,min=1"`
	BuyingMode         string `json:"buying_mode"         validate:"required,oneof=buy_it_now auction"`
	ListingTypeID      string `json:"listing_type_id"     validate:"required,listing_type"`
	Condition          string `json:"condition"           validate:"required,oneof=new used not_specified"`
	Description        string `json:"description"`
	VideoID            string `json:"video_id"`
	Warranty           string `json:"warranty"`
	SellerCustomField  string `json:"seller_custom_field"`
	AcceptsMercadoPago bool   `json:"accepts_mercadopago"`
}

// NonFieldKey is the FormErrors key for errors not tied to a single field.
const NonFieldKey = "__all__"

// FormErrors collects validation messages keyed by form field name.
type FormErrors struct {
	Fields map[string][]string
}

// Add appends msg to field. Use NonFieldKey for form-level messages.
func (e *FormErrors) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// AddNonField appends a form-level message.
func (e *FormErrors) AddNonField(msg string) {
	e.Add(NonFieldKey, msg)
}

// NonField returns the form-level messages.
func (e *FormErrors) NonField() []string {
	return e.Field(NonFieldKey)
}

// Field returns the messages attached to field.
func (e *FormErrors) Field(field string) []string {
	if e == nil {
		return nil
	}
	return e.Fields[field]
}

// Empty reports whether no message was recorded.
func (e *FormErrors) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *FormErrors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "invalid listing: " + strings.Join(parts, ", ")
}

var priceRe = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// FormatPrice normalizes a valid price to exactly two decimal places.
func FormatPrice(price string) (string, error) {
	price = strings.TrimSpace(price)
	if !priceRe.MatchString(price) {
		return "", fmt.Errorf("price %q must be a decimal with at most 2 decimal places", price)
	}

	whole, frac, _ := strings.Cut(price, ".")
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	frac += strings.Repeat("0", 2-len(frac))

	if whole == "0" && frac == "00" {
		return "", errors.New("price must be greater than zero")
	}
	return whole + "." + frac, nil
}

// Form validates drafts against one set of fetched choices. Building a Form
// performs no I/O.
type Form struct {
	Choices  Choices
	validate *validator.Validate
}

// NewForm builds the validator for choices.
func NewForm(choices Choices) *Form {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})

	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		_, err := FormatPrice(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("currency", oneOfChoices(choices.Currencies))
	_ = v.RegisterValidation("listing_type", oneOfChoices(choices.ListingTypes))

	return &Form{Choices: choices, validate: v}
}

func oneOfChoices(choices []Choice) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return slices.ContainsFunc(choices, func(c Choice) bool { return c.Value == value })
	}
}

// Validate checks d and returns a *FormErrors describing every problem, or
// nil.
func (f *Form) Validate(d Draft) error {
	err := f.validate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating listing: %w", err)
	}

	fe := &FormErrors{}
	for _, ve := range verrs {
		fe.Add(ve.Field(), message(ve))
	}
	return fe
}

// Bind parses values and validates the result, merging parse and validation
// messages into one *FormErrors.
func (f *Form) Bind(values url.Values) (Draft, error) {
	d, parseErrs := ParseDraft(values)

	err := f.Validate(d)
	if err == nil && parseErrs.Empty() {
		return d, nil
	}

	var fe *FormErrors
	if err != nil && !errors.As(err, &fe) {
		return d, err
	}
	if fe == nil {
		fe = &FormErrors{}
	}
	if !parseErrs.Empty() {
		for field, msgs := range parseErrs.Fields {
			for _, msg := range msgs {
				fe.Add(field, msg)
			}
		}
	}
	return d, fe
}

func message(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", ve.Param())
	case "min":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", ve.Param())
	case "price":
		return "Enter a number greater than zero with at most 2 decimal places."
	case "oneof", "currency", "listing_type":
		return fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", ve.Value())
	default:
		return fmt.Sprintf("Invalid value (%s).", ve.Tag())
	}
}

// ParseDraft builds a Draft from submitted form values. Malformed numbers are
// reported in the returned FormErrors, which is nil when there are none.
func ParseDraft(values url.Values) (Draft, *FormErrors) {
	get := func(key string) string {
		return strings.TrimSpace(values.Get(key))
	}

	d := Draft{
		Title:             get("title"),
		CategoryID:        get("category_id"),
		Price:             get("price"),
		CurrencyID:        get("currency_id"),
		BuyingMode:        get("buying_mode"),
		ListingTypeID:     get("listing_type_id"),
		Condition:         get("condition"),
		Description:       get("description"),
		VideoID:           get("video_id"),
		Warranty:          get("warranty"),
		SellerCustomField: get("seller_custom_field"),
	}

	var errs *FormErrors
	if q := get("available_quantity"); q != "" {
		n, err := strconv.Atoi(q)
		switch {
		case err != nil:
			errs = &FormErrors{}
			errs.Add("available_quantity", "Enter a whole number.")
		case n < 1:
			errs = &FormErrors{}
			errs.Add("available_quantity", "Ensure this value is greater than or equal to 1.")
		default:
			d.Quantity = n
		}
	}

	switch strings.ToLower(get("accepts_mercadopago")) {
	case "on", "true", "1", "yes":
		d.AcceptsMercadoPago = true
	}

	return d, errs
}
