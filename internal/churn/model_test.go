package churn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streampulse/internal/churn"
)

// separableDataset builds rows where retained users watch far more than
// churned ones, so the fit must order them correctly.
func separableDataset() churn.Dataset {
	return churn.Dataset{
		Users:        []string{"churn1", "churn2", "keep1", "keep2"},
		FeatureNames: churn.FeatureNames,
		Features: [][]float64{
			{1, 2, 100, 0.2},
			{1, 1, 80, 0.3},
			{9, 20, 4000, 0.9},
			{8, 18, 3500, 0.8},
		},
		Target: []int{0, 0, 1, 1},
	}
}

func TestTrainEmptyDataset(t *testing.T) {
	_, err := churn.Train(churn.Dataset{FeatureNames: churn.FeatureNames}, churn.DefaultTrainParams())
	require.ErrorIs(t, err, churn.ErrEmptyDataset)
}

func TestTrainSeparatesClasses(t *testing.T) {
	dataset := separableDataset()

	model, err := churn.Train(dataset, churn.DefaultTrainParams())
	require.NoError(t, err)

	scores := model.Predict(dataset)
	require.Len(t, scores, 4)

	byUser := make(map[string]float64, len(scores))
	for _, score := range scores {
		require.False(t, math.IsNaN(score.Probability))
		assert.Greater(t, score.Probability, 0.0)
		assert.Less(t, score.Probability, 1.0)
		byUser[score.UserID] = score.Probability
	}

	assert.Greater(t, byUser["keep1"], byUser["churn1"])
	assert.Greater(t, byUser["keep2"], byUser["churn2"])
	assert.Greater(t, byUser["keep1"], 0.5)
	assert.Less(t, byUser["churn1"], 0.5)
}

func TestTrainIsDeterministic(t *testing.T) {
	dataset := separableDataset()

	first, err := churn.Train(dataset, churn.DefaultTrainParams())
	require.NoError(t, err)
	second, err := churn.Train(dataset, churn.DefaultTrainParams())
	require.NoError(t, err)

	assert.Equal(t, first.Weights, second.Weights)
	assert.Equal(t, first.Bias, second.Bias)
}

func TestTrainHandlesZeroVarianceColumn(t *testing.T) {
	dataset := churn.Dataset{
		Users:        []string{"u1", "u2"},
		FeatureNames: churn.FeatureNames,
		Features: [][]float64{
			// The first column is constant across all rows.
			{5, 1, 100, 0.2},
			{5, 9, 900, 0.9},
		},
		Target: []int{0, 1},
	}

	model, err := churn.Train(dataset, churn.DefaultTrainParams())
	require.NoError(t, err)
	assert.Equal(t, 1.0, model.Scales[0])

	for _, score := range model.Predict(dataset) {
		require.False(t, math.IsNaN(score.Probability))
	}
}

func TestTrainDefaultsApplyToInvalidParams(t *testing.T) {
	dataset := separableDataset()

	model, err := churn.Train(dataset, churn.TrainParams{LearningRate: -1, Epochs: 0})
	require.NoError(t, err)

	scores := model.Predict(dataset)
	byUser := make(map[string]float64, len(scores))
	for _, score := range scores {
		byUser[score.UserID] = score.Probability
	}
	assert.Greater(t, byUser["keep1"], byUser["churn1"])
}

func TestPredictPreservesRowOrder(t *testing.T) {
	dataset := separableDataset()

	model, err := churn.Train(dataset, churn.DefaultTrainParams())
	require.NoError(t, err)

	scores := model.Predict(dataset)
	require.Len(t, scores, dataset.Len())
	for i, score := range scores {
		assert.Equal(t, dataset.Users[i], score.UserID)
	}
}
