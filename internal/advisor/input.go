package advisor

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/strrl/sleepq/internal/bedtime"
	"github.com/strrl/sleepq/internal/dataset"
)

// Input holds the raw values entered on the dashboard or the command line.
type Input struct {
	Age           int     `json:"age" form:"age" validate:"min=18,max=60"`
	ScreenTimeHrs float64 `json:"screen_time_hrs" form:"screen_time_hrs" validate:"min=0,max=12,halfstep"`
	CaffeineMg    int     `json:"caffeine_mg" form:"caffeine_mg" validate:"min=0,max=500"`
	ExerciseMin   int     `json:"exercise_min" form:"exercise_min" validate:"min=0,max=120"`
	Hour          float64 `json:"hour" form:"hour" validate:"min=1,max=12,halfstep"`
	Period        string  `json:"period" form:"period" validate:"required,oneof=AM PM am pm"`
}

// DefaultInput mirrors the dashboard's initial slider positions.
func DefaultInput() Input {
	return Input{
		Age:           25,
		ScreenTimeHrs: 4.5,
		CaffeineMg:    100,
		ExerciseMin:   30,
		Hour:          10,
		Period:        string(bedtime.PM),
	}
}

var ErrInvalidInput = errors.New("invalid input")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("halfstep", halfStep); err != nil {
		panic(fmt.Sprintf("register halfstep validation: %v", err))
	}
	return v
}

// halfStep accepts multiples of 0.5.
func halfStep(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return f*2 == math.Trunc(f*2)
}

func (in Input) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

// Features validates the input and converts it into a feature vector, with
// the clock reading normalized into a 24-hour bedtime.
func (in Input) Features() (dataset.FeatureVector, error) {
	if err := in.Validate(); err != nil {
		return dataset.FeatureVector{}, err
	}

	period, err := bedtime.ParsePeriod(in.Period)
	if err != nil {
		return dataset.FeatureVector{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	bt, err := bedtime.Normalize(in.Hour, period)
	if err != nil {
		return dataset.FeatureVector{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return dataset.FeatureVector{
		Age:           float64(in.Age),
		ScreenTimeHrs: in.ScreenTimeHrs,
		CaffeineMg:    float64(in.CaffeineMg),
		ExerciseMin:   float64(in.ExerciseMin),
		Bedtime:       bt,
	}, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "halfstep":
		return fmt.Sprintf("%s must be a multiple of 0.5", fe.Field())
	case "oneof", "required":
		return fmt.Sprintf("%s must be AM or PM", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
