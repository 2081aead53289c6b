package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/peterkuimelis/smtx/internal/battle"
)

const maxSamuraiSkills = 8

// Messages are shown to the player verbatim, so they keep the game's
// capitalization and punctuation.
const (
	msgSamuraiCount    = "Hay mas o menos de 1 samurai"
	msgTooManyUnits    = "Muchos en un equipo"
	msgEmptyName       = "Unidades con nombre vacío."
	msgDuplicateNames  = "Nombres duplicados %s"
	msgTooManySkills   = "Demasiadas habilidades en un samurai"
	msgDuplicateSkills = "El Samurai %s tiene habilidades duplicadas: %s."
)

// Validate checks one team's specs and returns every violation joined, or
// nil when the team is valid.
func Validate(specs []UnitSpec) error {
	var errs []error

	samurai := 0
	for _, s := range specs {
		if s.Samurai {
			samurai++
		}
	}
	if samurai != 1 {
		errs = append(errs, errors.New(msgSamuraiCount))
	}

	if len(specs) > battle.MaxUnits {
		errs = append(errs, errors.New(msgTooManyUnits))
	}

	for _, s := range specs {
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, errors.New(msgEmptyName))
			break
		}
	}

	if dup, ok := firstDuplicate(specs); ok {
		errs = append(errs, fmt.Errorf(msgDuplicateNames, dup))
	}

	for _, s := range specs {
		if !s.Samurai {
			continue
		}
		if len(s.Skills) > maxSamuraiSkills {
			errs = append(errs, errors.New(msgTooManySkills))
		}
	}
	for _, s := range specs {
		if !s.Samurai {
			continue
		}
		if dups := duplicateSkills(s.Skills); len(dups) > 0 {
			errs = append(errs, fmt.Errorf(msgDuplicateSkills,
				s.Name, strings.Join(dups, ", ")))
		}
	}

	return errors.Join(errs...)
}

// firstDuplicate returns the first name (in file order) that appears more
// than once, ignoring case.
func firstDuplicate(specs []UnitSpec) (string, bool) {
	counts := make(map[string]int)
	for _, s := range specs {
		counts[strings.ToLower(s.Name)]++
	}
	for _, s := range specs {
		if counts[strings.ToLower(s.Name)] > 1 {
			return s.Name, true
		}
	}
	return "", false
}

// duplicateSkills lists each repeated skill once, in the order the repeats
// are found. Blank names are ignored.
func duplicateSkills(names []string) []string {
	seen := make(map[string]bool)
	reported := make(map[string]bool)
	var dups []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		k := strings.ToLower(n)
		if seen[k] && !reported[k] {
			reported[k] = true
			dups = append(dups, n)
		}
		seen[k] = true
	}
	return dups
}
