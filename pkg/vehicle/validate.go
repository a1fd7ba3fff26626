package vehicle

import (
	"fmt"
)

// Validation codes.
const (
	CodeStationCount   = "STATION_COUNT"
	CodeChordNegative  = "CHORD_NEGATIVE"
	CodeThickness      = "THICKNESS_NEGATIVE"
	CodeCamberPosition = "CAMBER_POSITION"
	CodeProfileEmpty   = "PROFILE_EMPTY"
	CodeProfileSorted  = "PROFILE_UNSORTED"
	CodeRadiusNegative = "RADIUS_NEGATIVE"
	CodeDuplicateName  = "DUPLICATE_NAME"
)

// ValidationError represents a model that violates an input contract.
type ValidationError struct {
	Code    string
	Message string
	Part    string
}

func (e ValidationError) Error() string {
	context := ""
	if e.Part != "" {
		context = fmt.Sprintf(" (part: %s)", e.Part)
	}
	return fmt.Sprintf("%s: %s%s", e.Code, e.Message, context)
}

// Validate checks every component of v and returns all violations found.
// A nil result means the vehicle can be meshed.
func Validate(v *Vehicle) []ValidationError {
	var errs []ValidationError

	names := make(map[string]bool)
	for _, s := range v.Surfaces {
		if names[s.Name] {
			errs = append(errs, ValidationError{
				Code:    CodeDuplicateName,
				Message: fmt.Sprintf("surface name %q used more than once", s.Name),
				Part:    s.Name,
			})
		}
		names[s.Name] = true
		errs = append(errs, ValidateSurface(s)...)
	}
	if v.Fuselage != nil {
		errs = append(errs, ValidateFuselage(v.Fuselage)...)
	}
	return errs
}

// ValidateSurface checks a single lifting surface.
func ValidateSurface(s *LiftingSurface) []ValidationError {
	var errs []ValidationError

	if len(s.Stations) < MinStations {
		errs = append(errs, ValidationError{
			Code:    CodeStationCount,
			Message: fmt.Sprintf("surface has %d stations, need at least %d", len(s.Stations), MinStations),
			Part:    s.Name,
		})
	}
	for i, st := range s.Stations {
		if st.Chord < 0 {
			errs = append(errs, ValidationError{
				Code:    CodeChordNegative,
				Message: fmt.Sprintf("station %d chord is %.4f, must not be negative", i, st.Chord),
				Part:    s.Name,
			})
		}
		if st.Airfoil.Thickness < 0 {
			errs = append(errs, ValidationError{
				Code:    CodeThickness,
				Message: fmt.Sprintf("station %d thickness is %.4f, must not be negative", i, st.Airfoil.Thickness),
				Part:    s.Name,
			})
		}
		if p := st.Airfoil.CamberPos; p < 0 || p > 1 {
			errs = append(errs, ValidationError{
				Code:    CodeCamberPosition,
				Message: fmt.Sprintf("station %d camber position %.4f outside [0, 1]", i, p),
				Part:    s.Name,
			})
		}
	}
	return errs
}

// ValidateFuselage checks the fuselage profile.
func ValidateFuselage(f *Fuselage) []ValidationError {
	var errs []ValidationError

	if len(f.Profile) == 0 {
		errs = append(errs, ValidationError{
			Code:    CodeProfileEmpty,
			Message: "fuselage profile has no points",
			Part:    f.Name,
		})
	}
	for i, p := range f.Profile {
		if i > 0 && p.X < f.Profile[i-1].X {
			errs = append(errs, ValidationError{
				Code:    CodeProfileSorted,
				Message: fmt.Sprintf("profile point %d (x=%.4f) precedes point %d (x=%.4f)", i, p.X, i-1, f.Profile[i-1].X),
				Part:    f.Name,
			})
		}
		if p.Radius < 0 {
			errs = append(errs, ValidationError{
				Code:    CodeRadiusNegative,
				Message: fmt.Sprintf("profile point %d radius is %.4f, must not be negative", i, p.Radius),
				Part:    f.Name,
			})
		}
	}
	return errs
}
