package auth

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// IsWithinThresholdPeriod reports whether t falls inside the window
// described by period, e.g. "24h" or "30m".
func IsWithinThresholdPeriod(t time.Time, period string) (bool, error) {
	d, err := time.ParseDuration(period)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid threshold period").
			WithMetadata(map[string]any{"period": period})
	}
	return time.Since(t) <= d, nil
}

func IsOutsideThresholdPeriod(t time.Time, period string) (bool, error) {
	within, err := IsWithinThresholdPeriod(t, period)
	if err != nil {
		return false, err
	}
	return !within, nil
}
