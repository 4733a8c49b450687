package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"pioneer-cli/internal/model"
)

func TestClient_MeIsCachedUnderAuthTag(t *testing.T) {
	calls := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(model.UserProfile{ID: 1, Email: "a@b.c", FirstName: "Ada"})
	}))
	ctx := context.Background()

	if _, err := c.Me(ctx); err != nil {
		t.Fatalf("me: %v", err)
	}
	p, err := c.Me(ctx)
	if err != nil {
		t.Fatalf("cached me: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected cached profile, got %d calls", calls)
	}
	if p.FirstName != "Ada" {
		t.Fatalf("unexpected profile %+v", p)
	}

	c.Invalidate(TagAuth)
	if _, err := c.Me(ctx); err != nil {
		t.Fatalf("refetch me: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refetch after invalidation, got %d calls", calls)
	}
}

func TestClient_UpdateProfileMultipart(t *testing.T) {
	var gotFields map[string]string
	var gotImage []byte
	var gotImageName string

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/users/me/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				gotFields[k] = v[0]
			}
		}
		if fhs := r.MultipartForm.File["profile_image"]; len(fhs) > 0 {
			gotImageName = fhs[0].Filename
			f, err := fhs[0].Open()
			if err != nil {
				t.Errorf("open image part: %v", err)
			} else {
				gotImage, _ = io.ReadAll(f)
				_ = f.Close()
			}
		}
		_ = json.NewEncoder(w).Encode(model.UserProfile{ID: 1, FirstName: "Ada"})
	}))

	upd := ProfileUpdate{
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@b.c",
		Address:       "12 Analytical St",
		ContactNumber: "555-0100",
		Birthday:      "1815-12-10",
		Image: &ImageAttachment{
			Filename: "/tmp/uploads/avatar.png",
			Reader:   strings.NewReader("png-bytes"),
		},
	}
	updated, err := c.UpdateProfile(context.Background(), upd)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FirstName != "Ada" {
		t.Fatalf("unexpected response %+v", updated)
	}

	want := map[string]string{
		"first_name":     "Ada",
		"last_name":      "Lovelace",
		"email":          "ada@b.c",
		"address":        "12 Analytical St",
		"contact_number": "555-0100",
		"birthday":       "1815-12-10",
	}
	for k, v := range want {
		if gotFields[k] != v {
			t.Fatalf("field %s: expected %q, got %q", k, v, gotFields[k])
		}
	}
	if gotImageName != "avatar.png" {
		t.Fatalf("expected base filename, got %q", gotImageName)
	}
	if string(gotImage) != "png-bytes" {
		t.Fatalf("unexpected image payload %q", gotImage)
	}
}

func TestClient_UpdateProfileWithoutImage(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if len(r.MultipartForm.File) != 0 {
			t.Errorf("expected no file parts")
		}
		_ = json.NewEncoder(w).Encode(model.UserProfile{ID: 1})
	}))

	if _, err := c.UpdateProfile(context.Background(), ProfileUpdate{FirstName: "Ada"}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
}
