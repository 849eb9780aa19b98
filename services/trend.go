package services

import (
	"errors"

	"gonum.org/v1/gonum/stat"

	"sensor-dashboard/models"
)

// MinTrendPoints is the smallest sample a line can be fitted to.
const MinTrendPoints = 2

// FitTrend fits value ≈ slope·index + intercept over indices 0..n-1.
func FitTrend(values []float64) (models.TrendLine, error) {
	n := len(values)
	if n < MinTrendPoints {
		return models.TrendLine{}, &InsufficientDataError{Points: n}
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	// gonum returns y = alpha + beta*x
	alpha, beta := stat.LinearRegression(xs, values, nil, false)
	return models.TrendLine{Slope: beta, Intercept: alpha}, nil
}

// FitTrendField fits the named field across a snapshot.
func FitTrendField(field string, snapshot []models.Reading) (models.TrendLine, error) {
	line, err := FitTrend(ValuesOf(field, snapshot))
	var insufficient *InsufficientDataError
	if errors.As(err, &insufficient) {
		insufficient.Field = field
	}
	return line, err
}

// DescribeTrend builds the renderable view for one field. Warm-up is reported
// through Available=false rather than an error.
func DescribeTrend(field string, snapshot []models.Reading) models.TrendView {
	view := models.TrendView{Field: field, Points: len(ValuesOf(field, snapshot))}

	line, err := FitTrendField(field, snapshot)
	if err != nil {
		view.Reason = err.Error()
		return view
	}
	view.Available = true
	view.Trend = &line
	view.Fitted = line.Points(view.Points)
	return view
}
