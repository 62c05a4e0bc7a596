package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/strrl/sleepq/internal/db"
)

type Loader struct {
	db *sql.DB
}

func NewLoader() (*Loader, error) {
	database, err := db.GetDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database: %w", err)
	}

	return &Loader{db: database}, nil
}

// Load reads and validates every record of the CSV file at path. Any missing
// column or malformed row fails the whole load.
func (l *Loader) Load(ctx context.Context, path string) ([]Record, error) {
	if err := l.validate(ctx, path); err != nil {
		return nil, err
	}

	casts := make([]string, 0, len(RequiredColumns))
	for _, col := range RequiredColumns {
		casts = append(casts, fmt.Sprintf("TRY_CAST(%s AS DOUBLE)", db.QuoteIdent(col)))
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
	`, strings.Join(casts, ",\n\t\t\t"), readCSV(path))

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	row := 0
	for rows.Next() {
		row++
		values := make([]sql.NullFloat64, len(RequiredColumns))
		dest := make([]any, len(values))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", row, err)
		}

		record, err := toRecord(row, values)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// Columns returns the header of the CSV file at path.
func (l *Loader) Columns(ctx context.Context, path string) ([]string, error) {
	if err := checkSource(path); err != nil {
		return nil, err
	}

	rows, err := l.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", readCSV(path)))
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}
	return cols, nil
}

// Trend returns the mean sleep quality per distinct bedtime, ordered by
// bedtime.
func (l *Loader) Trend(ctx context.Context, path string) ([]TrendPoint, error) {
	if err := l.validate(ctx, path); err != nil {
		return nil, err
	}

	// Grouping happens on the parsed value so "22" and "22.0" share a point.
	query := fmt.Sprintf(`
		SELECT bt, AVG(quality) AS mean_quality, COUNT(*) AS n
		FROM (
			SELECT
				TRY_CAST(%[1]s AS DOUBLE) AS bt,
				TRY_CAST(%[2]s AS DOUBLE) AS quality
			FROM %[3]s
		)
		WHERE bt IS NOT NULL
		GROUP BY bt
		ORDER BY bt ASC
	`, db.QuoteIdent(ColumnBedtime), db.QuoteIdent(ColumnSleepQuality), readCSV(path))

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bedtime trend: %w", err)
	}
	defer rows.Close()

	var points []TrendPoint
	for rows.Next() {
		var (
			bedtime float64
			mean    sql.NullFloat64
			count   int64
		)
		if err := rows.Scan(&bedtime, &mean, &count); err != nil {
			return nil, fmt.Errorf("failed to scan trend row: %w", err)
		}
		if !mean.Valid {
			continue
		}
		points = append(points, TrendPoint{
			Bedtime:     bedtime,
			MeanQuality: mean.Float64,
			Count:       int(count),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return points, nil
}

func (l *Loader) validate(ctx context.Context, path string) error {
	cols, err := l.Columns(ctx, path)
	if err != nil {
		return err
	}

	if missing := missingColumns(cols); len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

func checkSource(path string) error {
	notFound := func(err error) error {
		dir, absErr := filepath.Abs(filepath.Dir(path))
		if absErr != nil {
			dir = filepath.Dir(path)
		}
		return &SourceNotFoundError{Path: path, Dir: dir, Err: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		return notFound(err)
	}
	if info.IsDir() {
		return notFound(fmt.Errorf("%s is a directory", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return notFound(err)
	}
	return f.Close()
}

func missingColumns(cols []string) []string {
	present := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		present[strings.TrimSpace(c)] = struct{}{}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

func readCSV(path string) string {
	return fmt.Sprintf("read_csv(%s, header = true, all_varchar = true)", db.QuoteLiteral(path))
}

func toRecord(row int, values []sql.NullFloat64) (Record, error) {
	for i, v := range values {
		if !v.Valid || math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0) {
			return Record{}, &RecordError{Row: row, Column: RequiredColumns[i], Reason: "missing or not numeric"}
		}
	}

	whole := func(i int) (int, error) {
		f := values[i].Float64
		if f != math.Trunc(f) {
			return 0, &RecordError{Row: row, Column: RequiredColumns[i], Reason: fmt.Sprintf("%v is not a whole number", f)}
		}
		return int(f), nil
	}

	age, err := whole(0)
	if err != nil {
		return Record{}, err
	}
	caffeine, err := whole(2)
	if err != nil {
		return Record{}, err
	}
	exercise, err := whole(3)
	if err != nil {
		return Record{}, err
	}
	label, err := whole(5)
	if err != nil {
		return Record{}, err
	}
	if label != 0 && label != 1 {
		return Record{}, &RecordError{Row: row, Column: ColumnSleepQuality, Reason: fmt.Sprintf("label %d is not 0 or 1", label)}
	}

	return Record{
		Age:           age,
		ScreenTimeHrs: values[1].Float64,
		CaffeineMg:    caffeine,
		ExerciseMin:   exercise,
		Bedtime:       values[4].Float64,
		SleepQuality:  label,
	}, nil
}
