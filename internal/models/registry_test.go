package models_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"iam/internal/db/dbtest"
	"iam/internal/models"
)

type recordingSigner struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingSigner) GetSignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	return "https://signed.example/" + key, nil
}

func TestAfterFindSignsOnlyTheUsersOwnAvatar(t *testing.T) {
	conn := dbtest.Open(t)
	signer := &recordingSigner{}
	models.RegisterAvatarURLSigner(signer)
	t.Cleanup(func() { models.RegisterAvatarURLSigner(nil) })

	owner := models.User{Name: "Owner", Email: "owner@example.com", Password: "x", IsActive: true}
	if err := conn.Create(&owner).Error; err != nil {
		t.Fatalf("create owner: %v", err)
	}
	own := models.ObjectKeyPrefix + models.AvatarKeyPrefix(owner.ID) + "me.png"
	if err := conn.Model(&owner).Update("image", own).Error; err != nil {
		t.Fatalf("set image: %v", err)
	}

	cases := map[string]func(id string) string{
		"foreign folder": func(string) string { return models.ObjectKeyPrefix + models.AvatarKeyPrefix(owner.ID) + "private.png" },
		"other prefix":   func(string) string { return models.ObjectKeyPrefix + "backups/db.sql" },
		"traversal": func(id string) string {
			return models.ObjectKeyPrefix + models.AvatarKeyPrefix(id) + "../" + owner.ID + "/me.png"
		},
	}
	for name, image := range cases {
		u := models.User{Name: name, Email: strings.ReplaceAll(name, " ", ".") + "@example.com", Password: "x", IsActive: true}
		if err := conn.Create(&u).Error; err != nil {
			t.Fatalf("%s: create: %v", name, err)
		}
		if err := conn.Model(&u).Update("image", image(u.ID)).Error; err != nil {
			t.Fatalf("%s: set image: %v", name, err)
		}
		var loaded models.User
		if err := conn.First(&loaded, "id = ?", u.ID).Error; err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if loaded.ImageURL != "" {
			t.Errorf("%s: %q must not be signed, got %q", name, *loaded.Image, loaded.ImageURL)
		}
	}

	var loaded models.User
	if err := conn.First(&loaded, "id = ?", owner.ID).Error; err != nil {
		t.Fatalf("load owner: %v", err)
	}
	if loaded.ImageURL == "" {
		t.Fatal("expected the owner's avatar to be signed")
	}
	if len(signer.keys) != 1 || signer.keys[0] != models.AvatarKeyPrefix(owner.ID)+"me.png" {
		t.Fatalf("unexpected signed keys %v", signer.keys)
	}
}
