package churn

import (
	"errors"
	"math"
)

// ErrEmptyDataset is returned by Train when the aligned dataset has no rows.
// Callers should treat it as "model unavailable" rather than a fatal error.
var ErrEmptyDataset = errors.New("churn: dataset has no rows")

// TrainParams control the gradient-descent fit.
type TrainParams struct {
	LearningRate float64
	Epochs       int
}

// DefaultTrainParams returns the documented defaults.
func DefaultTrainParams() TrainParams {
	return TrainParams{LearningRate: 0.1, Epochs: 300}
}

// Model holds the trained logistic-regression parameters together with the
// per-feature standardization applied during training. Immutable once built.
type Model struct {
	Weights []float64
	Bias    float64
	Means   []float64
	Scales  []float64
}

// UserScore is one user's predicted retention probability.
type UserScore struct {
	UserID      string  `json:"user_id"`
	Probability float64 `json:"probability"`
}

// Train standardizes each feature column to zero mean and unit variance, then
// fits logistic regression by batch gradient descent on the negative
// log-likelihood for a fixed number of epochs. Zero-variance columns keep a
// scale of 1 so they stay mean-centered without dividing by zero. There is no
// regularization or convergence check; the fit always runs the full epoch count.
func Train(dataset Dataset, params TrainParams) (*Model, error) {
	rows := dataset.Len()
	if rows == 0 {
		return nil, ErrEmptyDataset
	}
	if params.LearningRate <= 0 {
		params.LearningRate = DefaultTrainParams().LearningRate
	}
	if params.Epochs <= 0 {
		params.Epochs = DefaultTrainParams().Epochs
	}

	cols := len(dataset.FeatureNames)
	means, scales := standardization(dataset.Features, cols)

	standardized := make([][]float64, rows)
	for i, row := range dataset.Features {
		standardized[i] = standardizeRow(row, means, scales)
	}

	weights := make([]float64, cols)
	bias := 0.0
	gradient := make([]float64, cols)

	for epoch := 0; epoch < params.Epochs; epoch++ {
		for j := range gradient {
			gradient[j] = 0.0
		}
		gradientBias := 0.0

		for i, row := range standardized {
			prediction := sigmoid(dot(weights, row) + bias)
			residual := prediction - float64(dataset.Target[i])
			for j, value := range row {
				gradient[j] += residual * value
			}
			gradientBias += residual
		}

		for j := range weights {
			weights[j] -= params.LearningRate * gradient[j] / float64(rows)
		}
		bias -= params.LearningRate * gradientBias / float64(rows)
	}

	return &Model{
		Weights: weights,
		Bias:    bias,
		Means:   means,
		Scales:  scales,
	}, nil
}

// Predict scores every dataset row with the trained model, applying the
// stored standardization before the sigmoid. An empty dataset yields an empty
// result.
func (m *Model) Predict(dataset Dataset) []UserScore {
	scores := make([]UserScore, 0, dataset.Len())
	for i, userID := range dataset.Users {
		row := standardizeRow(dataset.Features[i], m.Means, m.Scales)
		scores = append(scores, UserScore{
			UserID:      userID,
			Probability: sigmoid(dot(m.Weights, row) + m.Bias),
		})
	}
	return scores
}

func standardization(features [][]float64, cols int) (means, scales []float64) {
	rows := float64(len(features))
	means = make([]float64, cols)
	scales = make([]float64, cols)

	for _, row := range features {
		for j, value := range row {
			means[j] += value
		}
	}
	for j := range means {
		means[j] /= rows
	}

	for _, row := range features {
		for j, value := range row {
			diff := value - means[j]
			scales[j] += diff * diff
		}
	}
	for j := range scales {
		scales[j] = math.Sqrt(scales[j] / rows)
		if scales[j] == 0 {
			scales[j] = 1.0
		}
	}
	return means, scales
}

func standardizeRow(row, means, scales []float64) []float64 {
	standardized := make([]float64, len(row))
	for j, value := range row {
		standardized[j] = (value - means[j]) / scales[j]
	}
	return standardized
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
