package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"pioneer-cli/internal/model"
)

// Me returns the current user's profile, cached under the auth tag.
func (c *Client) Me(ctx context.Context) (model.UserProfile, error) {
	c.mu.Lock()
	if c.profileOK && c.profile != nil {
		cached := *c.profile
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	var profile model.UserProfile
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/me/", nil, &profile, true); err != nil {
		return model.UserProfile{}, err
	}

	c.mu.Lock()
	p := profile
	c.profile = &p
	c.profileOK = true
	c.mu.Unlock()
	return profile, nil
}

// ProfileUpdate is the multipart account-form submission. Image is optional;
// when set it is attached as the profile_image file part.
type ProfileUpdate struct {
	FirstName     string
	LastName      string
	Email         string
	Address       string
	ContactNumber string
	Birthday      string
	Image         *ImageAttachment
}

type ImageAttachment struct {
	Filename string
	Reader   io.Reader
}

// UpdateProfile patches the account via multipart/form-data and invalidates
// the cached profile on success.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (model.UserProfile, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"first_name":     upd.FirstName,
		"last_name":      upd.LastName,
		"email":          upd.Email,
		"address":        upd.Address,
		"contact_number": upd.ContactNumber,
		"birthday":       upd.Birthday,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return model.UserProfile{}, fmt.Errorf("encode form field %s: %w", name, err)
		}
	}
	if upd.Image != nil {
		name := filepath.Base(upd.Image.Filename)
		part, err := w.CreateFormFile("profile_image", name)
		if err != nil {
			return model.UserProfile{}, fmt.Errorf("attach image: %w", err)
		}
		if _, err := io.Copy(part, upd.Image.Reader); err != nil {
			return model.UserProfile{}, fmt.Errorf("read image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return model.UserProfile{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPatch, "/api/users/me/", &buf, true)
	if err != nil {
		return model.UserProfile{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var updated model.UserProfile
	if err := c.do(req, &updated); err != nil {
		return model.UserProfile{}, err
	}
	c.Invalidate(TagAuth)
	return updated, nil
}
