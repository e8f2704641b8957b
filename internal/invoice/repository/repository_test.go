package repository

import (
	"errors"
	"testing"

	repo "fleetdesk/core/internal/repository"
)

func TestValidateNumber(t *testing.T) {
	for _, n := range []string{"INV000001", "INV999999", "INV000107"} {
		if err := ValidateNumber(n); err != nil {
			t.Errorf("ValidateNumber(%q): %v", n, err)
		}
	}
	for _, n := range []string{"", "INV1", "INV0000001", "inv000001", "VEH000001", "INV00000a", "INV000001 "} {
		err := ValidateNumber(n)
		if !errors.Is(err, repo.ErrInvalidGeneratedIdentifier) {
			t.Errorf("ValidateNumber(%q) = %v, want ErrInvalidGeneratedIdentifier", n, err)
		}
	}
}
