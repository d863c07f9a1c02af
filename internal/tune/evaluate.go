package tune

import (
	"fmt"

	"github.com/alxjhc/sf-airbnb/internal/dataset"
	"github.com/alxjhc/sf-airbnb/internal/feature"
	"github.com/alxjhc/sf-airbnb/internal/model"
)

// Evaluate refits the selected family at its selected grid point on the
// entire training partition and scores it once on the untouched test
// partition. This is the only unbiased generalization estimate the run
// produces; any failure here is fatal since no fallback model is defined.
func Evaluate(ds *dataset.Dataset, trainRows, testRows []int, sel Result, pipe feature.Pipeline, seed int64, metric MetricFunc) (float64, error) {
	if metric == nil {
		metric = RMSE
	}
	fam, ok := model.FamilyByName(sel.Family)
	if !ok {
		return 0, fmt.Errorf("selected family %q is not registered", sel.Family)
	}
	trainDS, err := ds.Select(trainRows)
	if err != nil {
		return 0, fmt.Errorf("final evaluation: %w", err)
	}
	testDS, err := ds.Select(testRows)
	if err != nil {
		return 0, fmt.Errorf("final evaluation: %w", err)
	}
	fitted, err := pipe.Fit(trainDS)
	if err != nil {
		return 0, fmt.Errorf("final pipeline fit: %w", err)
	}
	xTrain, err := fitted.Transform(trainDS)
	if err != nil {
		return 0, fmt.Errorf("final transform (train): %w", err)
	}
	xTest, err := fitted.Transform(testDS)
	if err != nil {
		return 0, fmt.Errorf("final transform (test): %w", err)
	}
	yTrain, err := fitted.TargetVector(trainDS)
	if err != nil {
		return 0, err
	}
	yTest, err := fitted.TargetVector(testDS)
	if err != nil {
		return 0, err
	}
	reg, err := fam.New(sel.Params, seed)
	if err != nil {
		return 0, fmt.Errorf("construct final %s: %w", sel.Family, err)
	}
	if err := reg.Fit(xTrain, yTrain); err != nil {
		return 0, fmt.Errorf("final refit of %s (%s): %w", sel.Family, sel.Params, err)
	}
	pred, err := reg.Predict(xTest)
	if err != nil {
		return 0, fmt.Errorf("final prediction: %w", err)
	}
	return metric(pred, yTest), nil
}
