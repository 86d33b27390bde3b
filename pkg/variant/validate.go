package variant

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/go-playground/validator/v10"
)

// variantValidate checks the struct tags on experiment variants.
// Initialized in init() with the custom slug rule.
var variantValidate *validator.Validate

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func init() {
	variantValidate = validator.New()
	_ = variantValidate.RegisterValidation("slug", validateSlug)
}

// validateSlug accepts lowercase, hyphen-separated names such as "cube-1".
func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

// Validate checks a variant's field constraints and its internal consistency:
// object ids and stage names must be unique and every stage must configure
// a role some object has.
func Validate(v *experiment.Variant) error {
	if v == nil {
		return errors.New("variant is nil")
	}
	if err := variantValidate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			errs := make([]error, 0, len(verrs))
			for _, fe := range verrs {
				errs = append(errs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("variant %q: %w", v.Name, errors.Join(errs...))
		}
		return fmt.Errorf("variant %q: %w", v.Name, err)
	}

	var errs []error
	ids := make(map[string]bool, len(v.Objects))
	for _, o := range v.Objects {
		if ids[o.ID] {
			errs = append(errs, fmt.Errorf("duplicate object id %q", o.ID))
		}
		ids[o.ID] = true
	}

	stages := make(map[string]bool, len(v.Stages))
	roles := v.Roles()
	for i, st := range v.Stages {
		if stages[st.Name] {
			errs = append(errs, fmt.Errorf("duplicate stage name %q", st.Name))
		}
		stages[st.Name] = true
		if len(st.Materials) == 0 {
			continue
		}
		used := false
		for _, r := range roles {
			if _, ok := st.Materials[r]; ok {
				used = true
				break
			}
		}
		if !used {
			errs = append(errs, fmt.Errorf("stage %d (%s) configures no role used by an object", i, st.Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("variant %q: %w", v.Name, errors.Join(errs...))
	}
	return nil
}
