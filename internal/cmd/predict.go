package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/strrl/sleepq/internal/advisor"
	"github.com/strrl/sleepq/internal/app"
	"github.com/strrl/sleepq/internal/bedtime"
	"github.com/strrl/sleepq/internal/dataset"
	"github.com/strrl/sleepq/internal/observability"
	"github.com/strrl/sleepq/internal/output"
)

var (
	predictInput       = advisor.DefaultInput()
	predictInteractive bool
	predictJSON        bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict sleep quality for one set of habits",
	Long: `Train the classifier and predict sleep quality for the given habits.
Values come from flags, or from an interactive form with --interactive.
A poor verdict is followed by suggestions for the habits that look off.`,
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)

	f := predictCmd.Flags()
	f.IntVar(&predictInput.Age, "age", predictInput.Age, "Age in years [18, 60]")
	f.Float64Var(&predictInput.ScreenTimeHrs, "screen-time", predictInput.ScreenTimeHrs, "Daily screen time in hours [0, 12], step 0.5")
	f.IntVar(&predictInput.CaffeineMg, "caffeine", predictInput.CaffeineMg, "Caffeine intake in mg [0, 500]")
	f.IntVar(&predictInput.ExerciseMin, "exercise", predictInput.ExerciseMin, "Exercise in minutes [0, 120]")
	f.Float64Var(&predictInput.Hour, "hour", predictInput.Hour, "Bedtime clock hour [1, 12], step 0.5")
	f.StringVar(&predictInput.Period, "period", predictInput.Period, "Bedtime period, AM or PM")
	f.BoolVarP(&predictInteractive, "interactive", "i", false, "Ask for the values in an interactive form")
	f.BoolVar(&predictJSON, "json", false, "Print the result as JSON")
}

func runPredict(cmd *cobra.Command, args []string) error {
	in := predictInput
	if predictInteractive {
		var err error
		in, err = askInput(in)
		if err != nil {
			return err
		}
	}
	if err := in.Validate(); err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg, observability.New(prometheus.NewRegistry()))
	if err != nil {
		return err
	}

	features, result, err := a.Predict(cmd.Context(), in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if predictJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Features dataset.FeatureVector `json:"features"`
			Clock    string                `json:"clock"`
			Result   advisor.Result        `json:"result"`
		}{features, bedtime.Format(features.Bedtime), result})
	}

	fmt.Fprintln(out, output.Verdict(features, result))
	return nil
}

// askInput shows a form prefilled with in and returns the edited values.
func askInput(in advisor.Input) (advisor.Input, error) {
	age := strconv.Itoa(in.Age)
	screen := strconv.FormatFloat(in.ScreenTimeHrs, 'f', -1, 64)
	caffeine := strconv.Itoa(in.CaffeineMg)
	exercise := strconv.Itoa(in.ExerciseMin)
	hour := strconv.FormatFloat(in.Hour, 'f', -1, 64)
	period := in.Period

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Age").Value(&age).Validate(intField),
			huh.NewInput().Title("Screen Time (hours)").Value(&screen).Validate(floatField),
			huh.NewInput().Title("Caffeine (mg)").Value(&caffeine).Validate(intField),
			huh.NewInput().Title("Exercise (mins)").Value(&exercise).Validate(intField),
		),
		huh.NewGroup(
			huh.NewInput().Title("Hour").Value(&hour).Validate(floatField),
			huh.NewSelect[string]().Title("AM/PM").Options(huh.NewOptions("PM", "AM")...).Value(&period),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return in, fmt.Errorf("prediction cancelled")
		}
		return in, fmt.Errorf("failed to read input: %w", err)
	}

	in.Age, _ = strconv.Atoi(age)
	in.ScreenTimeHrs, _ = strconv.ParseFloat(screen, 64)
	in.CaffeineMg, _ = strconv.Atoi(caffeine)
	in.ExerciseMin, _ = strconv.Atoi(exercise)
	in.Hour, _ = strconv.ParseFloat(hour, 64)
	in.Period = period
	return in, nil
}

func intField(s string) error {
	if _, err := strconv.Atoi(s); err != nil {
		return fmt.Errorf("enter a whole number")
	}
	return nil
}

func floatField(s string) error {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("enter a number")
	}
	return nil
}
