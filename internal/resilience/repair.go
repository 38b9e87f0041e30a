package resilience

import (
	"errors"

	"go.uber.org/zap"
)

// DoWithRepair runs attempt once. If it fails, repair is called and attempt
// runs a second and final time. There is no further fallback: a second
// failure is returned as a GeometryError with Repaired set.
//
// repair is expected to replace the operands attempt closes over; a repair
// error is reported as the fatal error for op.
func DoWithRepair[T any](op string, attempt func() (T, error), repair func() error) (T, error) {
	var zero T

	val, err := attempt()
	if err == nil {
		return val, nil
	}

	zap.L().Warn("geometry operation failed, retrying with repaired operands",
		zap.String("op", op),
		zap.Error(err),
	)

	if rErr := repair(); rErr != nil {
		return zero, &GeometryError{Op: op, Repaired: true, Err: errors.Join(err, rErr)}
	}

	val, err = attempt()
	if err != nil {
		var ge *GeometryError
		if errors.As(err, &ge) {
			return zero, &GeometryError{Op: op, Repaired: true, Err: ge.Err}
		}
		return zero, &GeometryError{Op: op, Repaired: true, Err: err}
	}
	return val, nil
}
