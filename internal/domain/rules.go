package domain

// numberRule is one range constraint on a numeric field.
type numberRule func(is issues, name string, v float64)

func atLeast(low float64, msg string) numberRule {
	return func(is issues, name string, v float64) { checkMin(is, name, v, low, msg) }
}

func atMost(high float64, msg string) numberRule {
	return func(is issues, name string, v float64) { checkMax(is, name, v, high, msg) }
}

// checkNumber applies the finite check and then every rule.
func checkNumber(is issues, name string, v float64, rules ...numberRule) {
	if !checkFinite(is, name, v) {
		return
	}
	for _, r := range rules {
		r(is, name, v)
	}
}

func checkOptNumber(is issues, name string, v *float64, rules ...numberRule) {
	if v != nil {
		checkNumber(is, name, *v, rules...)
	}
}

// numberInto reads a required number into dst and applies rules when it decoded.
func (o *object) numberInto(name string, dst *float64, rules ...numberRule) {
	if v, ok := o.number(name); ok {
		*dst = v
		checkNumber(o.is, name, v, rules...)
	}
}

func (o *object) optNumberInto(name string, dst **float64, rules ...numberRule) {
	if v := o.optNumber(name); v != nil {
		*dst = v
		checkNumber(o.is, name, *v, rules...)
	}
}

func (o *object) strInto(name string, dst *string) {
	if v, ok := o.str(name); ok {
		*dst = v
	}
}

func (o *object) boolInto(name string, dst *bool) {
	if v, ok := o.boolean(name); ok {
		*dst = v
	}
}
