package handlers

import (
	"net/http"
	"testing"

	"github.com/samahq/sama/internal/application"
)

func TestStatusForCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code string
		want int
	}{
		{application.CodeUserNotFound, http.StatusNotFound},
		{application.CodeNgoNotFound, http.StatusNotFound},
		{application.CodeInvalidCredentials, http.StatusUnauthorized},
		{application.CodeEmailInUse, http.StatusConflict},
		{application.CodeInvalidCurrentPassword, http.StatusBadRequest},
		{application.CodeInvalidAmount, http.StatusBadRequest},
		{application.CodeInsufficientFunds, http.StatusBadRequest},
		{"something_else", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusForCode(tc.code); got != tc.want {
			t.Errorf("statusForCode(%q) = %d, want %d", tc.code, got, tc.want)
		}
	}
}
