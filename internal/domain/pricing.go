package domain

import "tristar/fitness-hub/internal/apperr"

// Pricing holds membership fees.
type Pricing struct {
	MonthlyFee          Money `json:"monthlyFee"`
	QuarterlyFee        Money `json:"quarterlyFee"`
	HalfYearlyFee       Money `json:"halfYearlyFee"`
	YearlyFee           Money `json:"yearlyFee"`
	PersonalTrainingFee Money `json:"personalTrainingFee"`
}

func DefaultPricing() Pricing {
	return Pricing{
		MonthlyFee:          Rupees(1999),
		QuarterlyFee:        Rupees(5500),
		HalfYearlyFee:       Rupees(6999),
		YearlyFee:           Rupees(8500),
		PersonalTrainingFee: Rupees(5500),
	}
}

// FeeFor returns the fee charged for a membership term.
func (p Pricing) FeeFor(t MembershipType) Money {
	switch t {
	case MembershipMonthly:
		return p.MonthlyFee
	case MembershipQuarterly:
		return p.QuarterlyFee
	case MembershipAnnual:
		return p.YearlyFee
	}
	return 0
}

func (p Pricing) Validate() error {
	var fields []apperr.FieldError
	check := func(name string, v Money) {
		if v < 0 {
			fields = append(fields, apperr.FieldError{Field: name, Message: "must not be negative"})
		}
	}
	check("monthlyFee", p.MonthlyFee)
	check("quarterlyFee", p.QuarterlyFee)
	check("halfYearlyFee", p.HalfYearlyFee)
	check("yearlyFee", p.YearlyFee)
	check("personalTrainingFee", p.PersonalTrainingFee)
	if len(fields) > 0 {
		return apperr.Validation("invalid pricing", fields...)
	}
	return nil
}
