package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserBeforeSave_RequiresIdentifier(t *testing.T) {
	t.Parallel()

	email := "a@example.com"
	phone := "+15550001111"
	empty := ""

	cases := []struct {
		name    string
		user    User
		wantErr error
	}{
		{"email only", User{Email: &email}, nil},
		{"phone only", User{Phone: &phone}, nil},
		{"both", User{Email: &email, Phone: &phone}, nil},
		{"neither", User{}, ErrNoIdentifier},
		{"empty strings", User{Email: &empty, Phone: &empty}, ErrNoIdentifier},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.user.BeforeSave(nil)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
