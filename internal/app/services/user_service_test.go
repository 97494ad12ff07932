package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
)

type memStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func (m *memStorage) SaveBytes(relPath string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := m.URLFor(relPath)
	m.files[url] = data
	return url, nil
}

func (m *memStorage) DeleteFile(fileURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, fileURL)
	m.deleted = append(m.deleted, fileURL)
	return nil
}

func (m *memStorage) URLFor(relPath string) string {
	return "/uploads/" + relPath
}

func pngImage(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf
}

func TestUploadAvatarReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	storage := newMemStorage()
	svc := NewUserService(users, storage, 64, testLogger).(*userServiceImpl)
	tick := time.Unix(1700000000, 0)
	svc.now = func() time.Time { tick = tick.Add(time.Second); return tick }

	student := users.add(models.RoleStudent, "Student")

	first, err := svc.UploadAvatar(ctx, principal(student), pngImage(t, 120, 80))
	require.NoError(t, err)
	require.NotNil(t, first.ProfilePictureURL)
	assert.True(t, strings.HasPrefix(*first.ProfilePictureURL, "/uploads/avatars/"+student.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(*first.ProfilePictureURL, ".jpg"))

	second, err := svc.UploadAvatar(ctx, principal(student), pngImage(t, 50, 50))
	require.NoError(t, err)
	assert.NotEqual(t, *first.ProfilePictureURL, *second.ProfilePictureURL)
	assert.Equal(t, []string{*first.ProfilePictureURL}, storage.deleted)
	assert.Len(t, storage.files, 1)

	_, err = svc.UploadAvatar(ctx, principal(student), strings.NewReader("not an image"))
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	svc := NewUserService(users, newMemStorage(), 64, testLogger)
	coach := users.add(models.RoleCoach, "Coach")

	name := "  Coach Taylor "
	lang := "tr"
	updated, err := svc.UpdateProfile(ctx, principal(coach), &dto.UpdateProfileRequest{
		FullName:                &name,
		LanguagePreference:      &lang,
		NotificationPreferences: map[string]bool{"email": false},
	})
	require.NoError(t, err)
	assert.Equal(t, "Coach Taylor", updated.FullName)
	assert.Equal(t, "tr", *updated.LanguagePreference)
	assert.False(t, updated.NotificationPreferences["email"])
	assert.Equal(t, models.RoleCoach, updated.Role)

	profile, err := svc.GetProfile(ctx, principal(coach))
	require.NoError(t, err)
	assert.Equal(t, "Coach Taylor", profile.FullName)

	blank := " "
	_, err = svc.UpdateProfile(ctx, principal(coach), &dto.UpdateProfileRequest{FullName: &blank})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestAdminUserManagement(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	storage := newMemStorage()
	svc := NewUserService(users, storage, 64, testLogger)

	admin := users.add(models.RoleAdmin, "Admin")
	otherAdmin := users.add(models.RoleAdmin, "Other admin")
	staff := users.add(models.RoleStaff, "Staff")

	_, err := svc.CreateUser(ctx, principal(admin), &dto.CreateUserRequest{Email: "x@academy.test", Password: "secret1", FullName: "X", Role: models.RoleAdmin})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	coach, err := svc.CreateUser(ctx, principal(admin), &dto.CreateUserRequest{Email: "Coach@Academy.test", Password: "secret1", FullName: "New Coach", Role: models.RoleCoach})
	require.NoError(t, err)
	assert.Equal(t, "coach@academy.test", coach.Email)

	_, err = svc.CreateUser(ctx, principal(admin), &dto.CreateUserRequest{Email: "coach@academy.test", Password: "secret1", FullName: "Dup", Role: models.RoleStaff})
	assert.True(t, errors.Is(err, apperrors.ErrResourceAlreadyExists))

	_, err = svc.CreateUser(ctx, principal(staff), &dto.CreateUserRequest{Email: "y@academy.test", Password: "secret1", FullName: "Y", Role: models.RoleStudent})
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	promoted, err := svc.UpdateRole(ctx, principal(admin), coach.ID, models.RoleStaff)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, promoted.Role)

	_, err = svc.UpdateRole(ctx, principal(admin), admin.ID, models.RoleCoach)
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	coaches, total, err := svc.ListUsers(ctx, principal(admin), &dto.UserFilterRequest{Role: "staff", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, coaches, 2)

	err = svc.DeleteUser(ctx, principal(admin), admin.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
	err = svc.DeleteUser(ctx, principal(admin), otherAdmin.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	require.NoError(t, svc.DeleteUser(ctx, principal(admin), coach.ID))
	_, err = svc.GetUser(ctx, principal(admin), coach.ID)
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))
}

func TestNavigationFollowsRole(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, newMemStorage(), 64, testLogger)

	student := svc.Navigation(principal(users.add(models.RoleStudent, "S")))
	admin := svc.Navigation(principal(users.add(models.RoleAdmin, "A")))
	assert.Equal(t, models.RoleStudent, student.Role)
	assert.NotEmpty(t, student.Entries)
	assert.Greater(t, len(admin.Entries), len(student.Entries))
}

func TestDirectoryListsStudentsAndCoaches(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	svc := NewUserService(users, newMemStorage(), 64, testLogger)

	staff := users.add(models.RoleStaff, "Front desk")
	coach := users.add(models.RoleCoach, "Coach Kaya")
	ana := users.add(models.RoleStudent, "Ana")
	ben := users.add(models.RoleStudent, "Ben")
	student := users.add(models.RoleStudent, "Cem")

	students, err := svc.Directory(ctx, principal(staff), models.RoleStudent)
	require.NoError(t, err)
	var names []string
	for _, s := range students {
		names = append(names, s.FullName)
	}
	assert.ElementsMatch(t, []string{"Ana", "Ben", "Cem"}, names)
	assert.Contains(t, students, ana.Summary())
	assert.Contains(t, students, ben.Summary())

	coaches, err := svc.Directory(ctx, principal(coach), models.RoleCoach)
	require.NoError(t, err)
	require.Len(t, coaches, 1)
	assert.Equal(t, coach.ID, coaches[0].ID)

	_, err = svc.Directory(ctx, principal(coach), models.RoleAdmin)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	_, err = svc.Directory(ctx, principal(student), models.RoleCoach)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}
