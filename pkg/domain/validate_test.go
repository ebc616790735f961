package domain

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"ada@uni.edu", true},
		{"", false},
		{"ada", false},
		{"ada@", false},
	}
	for _, tt := range tests {
		if err := ValidateEmail(tt.email); (err == nil) != tt.ok {
			t.Errorf("ValidateEmail(%q) = %v, want ok=%v", tt.email, err, tt.ok)
		}
	}
}

func TestRegistrationValidate(t *testing.T) {
	valid := Registration{FirstName: "Ada", Email: "ada@uni.edu", Password: "pw"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid registration rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Registration)
	}{
		{"no first name", func(r *Registration) { r.FirstName = "" }},
		{"bad email", func(r *Registration) { r.Email = "not-an-email" }},
		{"no password", func(r *Registration) { r.Password = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if err := r.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNewBookRequestValidate(t *testing.T) {
	valid := NewBookRequest{Title: "Rayuela", Author: "Cortázar", Type: "novela"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid book rejected: %v", err)
	}
	withCover := valid
	for _, img := range []string{"data:image/png;base64,aGVsbG8=", "data:image/jpeg;base64,aGVsbG8="} {
		withCover.Image64 = img
		if err := withCover.Validate(); err != nil {
			t.Errorf("cover %q rejected: %v", img, err)
		}
	}

	bad := []NewBookRequest{
		{Author: "Cortázar", Type: "novela"},
		{Title: "Rayuela", Author: "Cortázar", Type: "poesia"},
		{Title: "Rayuela", Author: "Cortázar", Type: "novela", Image64: "aGVsbG8="},
		{Title: "Rayuela", Author: "Cortázar", Type: "novela", Image64: "data:image/gif;base64,aGVsbG8="},
		{Title: "Rayuela", Author: "Cortázar", Type: "novela", Image64: "data:image/png;base64,%%%"},
	}
	for i, r := range bad {
		if err := r.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestReferencesValidate(t *testing.T) {
	if err := (NewCopyRequest{Book: IDRef{ID: 3}}).Validate(); err != nil {
		t.Errorf("valid copy rejected: %v", err)
	}
	if err := (NewCopyRequest{}).Validate(); err == nil {
		t.Error("copy without a book should fail")
	}
	if err := (NewLoanRequest{User: IDRef{ID: 1}, Copy: IDRef{ID: 2}}).Validate(); err != nil {
		t.Errorf("valid loan rejected: %v", err)
	}
	if err := (NewLoanRequest{User: IDRef{ID: 1}, Copy: IDRef{ID: -2}}).Validate(); err == nil {
		t.Error("negative copy id should fail")
	}
}
