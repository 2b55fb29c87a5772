package session

import (
	"errors"
	"strings"
	"testing"

	"askida/internal/apiclient"
	"askida/internal/domain"
)

func TestValidateRegistration(t *testing.T) {
	valid := apiclient.RegisterRequest{
		FullName:    "Ayşe Kaya",
		Email:       "ayse@example.com",
		Password:    "secret1",
		PhoneNumber: "+90 555 111 22 33",
		Role:        domain.RoleRecipient,
	}
	if err := ValidateRegistration(valid, valid.Password); err != nil {
		t.Fatalf("valid registration rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*apiclient.RegisterRequest)
		confirm string
		field   string
	}{
		{name: "short name", mutate: func(r *apiclient.RegisterRequest) { r.FullName = " Al " }, field: "full_name"},
		{name: "bad email", mutate: func(r *apiclient.RegisterRequest) { r.Email = "ayse@example" }, field: "email"},
		{name: "short password", mutate: func(r *apiclient.RegisterRequest) { r.Password = "12345" }, field: "password"},
		{name: "long password", mutate: func(r *apiclient.RegisterRequest) { r.Password = strings.Repeat("a", 73) }, field: "password"},
		{name: "mismatch", mutate: func(r *apiclient.RegisterRequest) {}, confirm: "other", field: "password"},
		{name: "short phone", mutate: func(r *apiclient.RegisterRequest) { r.PhoneNumber = "555 12" }, field: "phone_number"},
		{name: "letters in phone", mutate: func(r *apiclient.RegisterRequest) { r.PhoneNumber = "0555abc1122" }, field: "phone_number"},
		{name: "unknown role", mutate: func(r *apiclient.RegisterRequest) { r.Role = "admin" }, field: "user_type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			confirm := req.Password
			if tc.confirm != "" {
				confirm = tc.confirm
			}
			err := ValidateRegistration(req, confirm)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) || vErr.Field != tc.field {
				t.Fatalf("field = %v, want %q", err, tc.field)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	if err := ValidateLogin(apiclient.LoginRequest{Email: "a@b.co", Password: "x"}); err != nil {
		t.Fatalf("valid login rejected: %v", err)
	}
	if err := ValidateLogin(apiclient.LoginRequest{Email: "", Password: "x"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty email error = %v", err)
	}
	if err := ValidateLogin(apiclient.LoginRequest{Email: "a@b.co"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty password error = %v", err)
	}
}
