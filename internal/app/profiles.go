package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bluecollarconnect/internal/ingest"
	"bluecollarconnect/pkg/domain"
	"bluecollarconnect/pkg/storage"
)

// profileTextFields are the wire names a profile update may carry.
var profileTextFields = []string{
	"firstName", "middleName", "lastName", "phoneNumber", "emailAddress",
	"residentialAddress", "profession", "gender", "summary",
}

// CreateProfile stores uploaded files, then writes a fresh profile document.
//
// The existence check and the write are separate steps; a concurrent create
// for the same uid can slip between them and the last write wins.
func (a *App) CreateProfile(ctx context.Context, uid string, form *ingest.Form) (domain.UserProfile, error) {
	exists, err := a.store.HasProfile(uid)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if exists {
		return domain.UserProfile{}, ErrProfileExists
	}

	photoURL, err := a.storeFormFile(ctx, form, "profilePhoto")
	if err != nil {
		return domain.UserProfile{}, err
	}
	resumeURL, err := a.storeFormFile(ctx, form, "resume")
	if err != nil {
		return domain.UserProfile{}, err
	}

	now := time.Now().UTC()
	profile := domain.UserProfile{
		UID:                uid,
		FirstName:          form.Value("firstName"),
		MiddleName:         form.Value("middleName"),
		LastName:           form.Value("lastName"),
		PhoneNumber:        form.Value("phoneNumber"),
		EmailAddress:       form.Value("emailAddress"),
		ProfilePhoto:       photoURL,
		ResidentialAddress: form.Value("residentialAddress"),
		Resume:             resumeURL,
		Profession:         form.Value("profession"),
		Gender:             form.Value("gender"),
		Summary:            form.Value("summary"),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := a.store.SaveProfile(profile); err != nil {
		return domain.UserProfile{}, err
	}
	return profile, nil
}

// UpdateProfile merges only the submitted fields into the stored profile.
// New uploads replace the stored URL; the old object is deleted best-effort.
// It returns the wire-named fields that were written.
func (a *App) UpdateProfile(ctx context.Context, uid string, form *ingest.Form) (map[string]any, error) {
	existing, found, err := a.store.GetProfile(uid)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	for _, name := range profileTextFields {
		if form.Has(name) {
			fields[name] = form.Value(name)
		}
	}

	if _, ok := form.Files["profilePhoto"]; ok && found && existing.ProfilePhoto != "" {
		a.deleteOldObject(ctx, existing.ProfilePhoto)
	}
	if _, ok := form.Files["resume"]; ok && found && existing.Resume != "" {
		a.deleteOldObject(ctx, existing.Resume)
	}

	if url, err := a.storeFormFile(ctx, form, "profilePhoto"); err != nil {
		return nil, err
	} else if url != "" {
		fields["profilePhoto"] = url
	}
	if url, err := a.storeFormFile(ctx, form, "resume"); err != nil {
		return nil, err
	} else if url != "" {
		fields["resume"] = url
	}

	now := time.Now().UTC()
	fields["updatedAt"] = now

	if found {
		if err := a.store.UpdateProfileFields(uid, fields); err != nil {
			return nil, err
		}
		return fields, nil
	}

	// No stored profile: unsubmitted fields start from their zero values.
	profile := domain.UserProfile{UID: uid, CreatedAt: now, UpdatedAt: now}
	applyWireFields(&profile, fields)
	if err := a.store.SaveProfile(profile); err != nil {
		return nil, err
	}
	return fields, nil
}

// GetProfile returns the stored profile for a uid.
func (a *App) GetProfile(uid string) (domain.UserProfile, error) {
	profile, ok, err := a.store.GetProfile(uid)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if !ok {
		return domain.UserProfile{}, ErrProfileNotFound
	}
	return profile, nil
}

// storeFormFile writes a named file part to the object store under a
// uuid-prefixed key and returns its public URL, or "" when absent.
func (a *App) storeFormFile(ctx context.Context, form *ingest.Form, name string) (string, error) {
	file, ok := form.Files[name]
	if !ok {
		return "", nil
	}
	key := fmt.Sprintf("%s_%s", uuid.NewString(), file.Filename)
	if err := a.objects.Put(ctx, key, bytes.NewReader(file.Data), int64(len(file.Data)), file.ContentType); err != nil {
		return "", fmt.Errorf("store %s: %w", name, err)
	}
	return a.objects.PublicURL(key), nil
}

func (a *App) deleteOldObject(ctx context.Context, url string) {
	key := storage.ObjectKeyFromURL(url)
	if key == "" {
		return
	}
	if err := a.objects.Delete(ctx, key); err != nil {
		slog.Error("delete replaced upload", "key", key, "error", err)
	}
}

func applyWireFields(p *domain.UserProfile, fields map[string]any) {
	set := func(dst *string, v any) {
		if s, ok := v.(string); ok {
			*dst = s
		}
	}
	for name, v := range fields {
		switch name {
		case "firstName":
			set(&p.FirstName, v)
		case "middleName":
			set(&p.MiddleName, v)
		case "lastName":
			set(&p.LastName, v)
		case "phoneNumber":
			set(&p.PhoneNumber, v)
		case "emailAddress":
			set(&p.EmailAddress, v)
		case "profilePhoto":
			set(&p.ProfilePhoto, v)
		case "residentialAddress":
			set(&p.ResidentialAddress, v)
		case "resume":
			set(&p.Resume, v)
		case "profession":
			set(&p.Profession, v)
		case "gender":
			set(&p.Gender, v)
		case "summary":
			set(&p.Summary, v)
		}
	}
}
