package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"user":       RoleUser,
		" Guide ":    RoleGuide,
		"LEAD-GUIDE": RoleLeadGuide,
		"admin":      RoleAdmin,
	}
	for raw, want := range cases {
		got, ok := ParseRole(raw)
		if !ok || got != want {
			t.Fatalf("ParseRole(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}
	for _, raw := range []string{"", "root", "lead guide"} {
		if _, ok := ParseRole(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestChangedPasswordAfter(t *testing.T) {
	issued := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	u := &User{}
	if u.ChangedPasswordAfter(issued) {
		t.Fatal("expected false when the password never changed")
	}

	changed := issued.Add(-time.Second)
	u.PasswordChangedAt = &changed
	if u.ChangedPasswordAfter(issued) {
		t.Fatal("expected false for a change before issue")
	}

	// Same second counts as not after.
	sameSecond := issued.Add(500 * time.Millisecond)
	u.PasswordChangedAt = &sameSecond
	if u.ChangedPasswordAfter(issued) {
		t.Fatal("expected sub-second difference to be ignored")
	}

	later := issued.Add(time.Minute)
	u.PasswordChangedAt = &later
	if !u.ChangedPasswordAfter(issued) {
		t.Fatal("expected true for a change after issue")
	}
}

func TestHasRole(t *testing.T) {
	u := &User{Role: RoleLeadGuide}
	if !u.HasRole(RoleAdmin, RoleLeadGuide) {
		t.Fatal("expected lead-guide to match")
	}
	if u.HasRole(RoleUser) {
		t.Fatal("expected user role not to match")
	}
	if u.HasRole() {
		t.Fatal("expected empty role list to match nothing")
	}
}

func TestUserJSONHidesCredentials(t *testing.T) {
	hash := "secret-hash"
	creds := UserCredentials{
		User:               User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", Role: RoleUser},
		PasswordHash:       hash,
		PasswordResetToken: &hash,
	}
	out, err := json.Marshal(creds)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"PasswordHash", "PasswordResetToken", "PasswordChangedAt", "password_changed_at"} {
		if _, ok := fields[key]; ok {
			t.Fatalf("expected %s to be hidden, got %s", key, out)
		}
	}
	if fields["email"] != "ada@example.com" {
		t.Fatalf("expected email in output, got %s", out)
	}
}

func TestReviewJSONNestsAuthor(t *testing.T) {
	r := Review{
		ID:            uuid.New(),
		Review:        "Great",
		Rating:        5,
		TourID:        uuid.New(),
		UserID:        uuid.New(),
		ReviewerName:  "Sophie",
		ReviewerPhoto: "user-3.jpg",
	}
	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Tour string `json:"tour"`
		User struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Photo string `json:"photo"`
		} `json:"user"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.User.ID != r.UserID.String() || decoded.User.Name != "Sophie" || decoded.User.Photo != "user-3.jpg" {
		t.Fatalf("unexpected author %+v", decoded.User)
	}
	if decoded.Tour != r.TourID.String() {
		t.Fatalf("expected tour id, got %q", decoded.Tour)
	}
}

func TestDifficultyValid(t *testing.T) {
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyDifficult} {
		if !d.Valid() {
			t.Fatalf("expected %q to be valid", d)
		}
	}
	if Difficulty("extreme").Valid() {
		t.Fatal("expected unknown difficulty to be invalid")
	}
}
