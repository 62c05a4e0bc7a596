package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Header names of the dataset file. The order of the first five is the
// feature order the classifier is trained and queried with.
const (
	ColumnAge          = "Age"
	ColumnScreenTime   = "Screen Time (hrs)"
	ColumnCaffeine     = "Caffeine (mg)"
	ColumnExercise     = "Exercise (mins)"
	ColumnBedtime      = "Bedtime"
	ColumnSleepQuality = "Sleep Quality"
)

var FeatureColumns = []string{
	ColumnAge,
	ColumnScreenTime,
	ColumnCaffeine,
	ColumnExercise,
	ColumnBedtime,
}

var RequiredColumns = append(append([]string{}, FeatureColumns...), ColumnSleepQuality)

type Record struct {
	Age           int
	ScreenTimeHrs float64
	CaffeineMg    int
	ExerciseMin   int
	Bedtime       float64
	SleepQuality  int
}

func (r Record) Features() FeatureVector {
	return FeatureVector{
		Age:           float64(r.Age),
		ScreenTimeHrs: r.ScreenTimeHrs,
		CaffeineMg:    float64(r.CaffeineMg),
		ExerciseMin:   float64(r.ExerciseMin),
		Bedtime:       r.Bedtime,
	}
}

type FeatureVector struct {
	Age           float64 `json:"age"`
	ScreenTimeHrs float64 `json:"screen_time_hrs"`
	CaffeineMg    float64 `json:"caffeine_mg"`
	ExerciseMin   float64 `json:"exercise_min"`
	Bedtime       float64 `json:"bedtime"`
}

// Values returns the vector in FeatureColumns order.
func (v FeatureVector) Values() []float64 {
	return []float64{v.Age, v.ScreenTimeHrs, v.CaffeineMg, v.ExerciseMin, v.Bedtime}
}

// Matrix splits records into a feature matrix and a label vector.
func Matrix(records []Record) ([][]float64, []int) {
	x := make([][]float64, len(records))
	y := make([]int, len(records))
	for i, r := range records {
		x[i] = r.Features().Values()
		y[i] = r.SleepQuality
	}
	return x, y
}

type TrendPoint struct {
	Bedtime     float64 `json:"bedtime"`
	MeanQuality float64 `json:"mean_quality"`
	Count       int     `json:"count"`
}

type Summary struct {
	Records int `json:"records"`
	Good    int `json:"good"`
	Poor    int `json:"poor"`
}

func Summarize(records []Record) Summary {
	s := Summary{Records: len(records)}
	for _, r := range records {
		if r.SleepQuality == 1 {
			s.Good++
		} else {
			s.Poor++
		}
	}
	return s
}

var (
	ErrSourceNotFound = errors.New("dataset source not found")
	ErrSchema         = errors.New("dataset schema error")
)

type SourceNotFoundError struct {
	Path string
	// Dir is the absolute directory the path was resolved against.
	Dir string
	Err error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("dataset file (%s) not found in: %s", e.Path, e.Dir)
}

func (e *SourceNotFoundError) Is(target error) bool { return target == ErrSourceNotFound }

func (e *SourceNotFoundError) Unwrap() error { return e.Err }

type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "missing columns in dataset: " + strings.Join(e.Missing, ", ")
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// RecordError reports a row whose field is absent or not numeric. Row is the
// 1-based data row, not counting the header.
type RecordError struct {
	Row    int
	Column string
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("invalid record at row %d, column %q: %s", e.Row, e.Column, e.Reason)
}

func (e *RecordError) Is(target error) bool { return target == ErrSchema }
