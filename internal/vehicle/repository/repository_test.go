package repository

import (
	"errors"
	"testing"

	repo "fleetdesk/core/internal/repository"
)

func TestValidateNumber(t *testing.T) {
	for _, n := range []string{"VEH0001", "VEH9999", "VEH0042"} {
		if err := ValidateNumber(n); err != nil {
			t.Errorf("ValidateNumber(%q): %v", n, err)
		}
	}
	for _, n := range []string{"", "VEH1", "VEH00001", "veh0001", "CAR0001", "VEH00a1", " VEH0001"} {
		err := ValidateNumber(n)
		if !errors.Is(err, repo.ErrInvalidGeneratedIdentifier) {
			t.Errorf("ValidateNumber(%q) = %v, want ErrInvalidGeneratedIdentifier", n, err)
		}
	}
}
