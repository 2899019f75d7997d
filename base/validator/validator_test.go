package validator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ValidatorTestSuite struct {
	suite.Suite
}

func TestValidator(t *testing.T) {
	suite.Run(t, new(ValidatorTestSuite))
}

func (s *ValidatorTestSuite) TestIsValidSlug() {
	tests := []struct {
		desc       string
		slug       string
		expIsValid bool
	}{
		{
			desc:       "valid slug",
			slug:       "1234-desert-view-dr-phoenix-1700000000000",
			expIsValid: true,
		},
		{
			desc:       "uppercase rejected",
			slug:       "1234-Desert-View",
			expIsValid: false,
		},
		{
			desc:       "spaces rejected",
			slug:       "1234 desert view",
			expIsValid: false,
		},
		{
			desc:       "leading dash rejected",
			slug:       "-1234-desert",
			expIsValid: false,
		},
		{
			desc:       "empty rejected",
			slug:       "",
			expIsValid: false,
		},
	}

	for _, t := range tests {
		s.Equal(t.expIsValid, IsValidSlug(t.slug), t.desc)
	}
}
