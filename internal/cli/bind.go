package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/trestle"
	"github.com/aretw0/trestle/pkg/domain"
)

// Bind applies --set name=value pairs and raw flag arguments to the engine.
// Defaults of immediate parameters are bound first, so explicit values override them.
// Raw arguments are "--alias value", "--alias=value", or a lone "--alias", which binds true.
// A following token starting with "-" is taken as the value only when it is a number.
// Every problem is reported, not just the first.
func Bind(eng *trestle.Engine, sets []string, raw []string) error {
	eng.ApplyDefaults(domain.BindImmediate)

	var errs []error

	for _, kv := range sets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			errs = append(errs, fmt.Errorf("invalid --set %q, want name=value", kv))
			continue
		}
		if err := eng.SetValue(name, value); err != nil {
			errs = append(errs, err)
		}
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			errs = append(errs, fmt.Errorf("unexpected argument %q", arg))
			continue
		}

		flag, value, hasValue := strings.Cut(arg, "=")
		if !hasValue {
			if i+1 < len(raw) && isValue(raw[i+1]) {
				value = raw[i+1]
				i++
			} else {
				value = "true"
			}
		}
		if err := eng.SetFlag(flag, value); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func isValue(arg string) bool {
	if !strings.HasPrefix(arg, "-") {
		return true
	}
	_, err := strconv.ParseFloat(arg, 64)
	return err == nil
}
