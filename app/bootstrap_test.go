package app

import (
	"context"
	"testing"

	"asset_borrow_tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUsers struct {
	byEmail map[string]*models.User
}

func (f *fakeUsers) CountAdmins(context.Context) (int64, error) {
	var n int64
	for _, u := range f.byEmail {
		if u.IsAdmin() {
			n++
		}
	}
	return n, nil
}

func (f *fakeUsers) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) CreateUser(_ context.Context, u *models.User) error {
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) UpdateUserRole(_ context.Context, id string, role models.Role) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			u.Role = role
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func TestBootstrapCreatesAdmin(t *testing.T) {
	users := &fakeUsers{byEmail: map[string]*models.User{}}
	require.NoError(t, BootstrapFirstAdmin(context.Background(), " Boss@Example.com ", users))

	u := users.byEmail["boss@example.com"]
	require.NotNil(t, u)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "boss", u.Name)
}

func TestBootstrapPromotesExistingUser(t *testing.T) {
	users := &fakeUsers{byEmail: map[string]*models.User{
		"boss@example.com": {ID: "u-1", Email: "boss@example.com", Role: models.RoleUser},
	}}
	require.NoError(t, BootstrapFirstAdmin(context.Background(), "boss@example.com", users))
	assert.Equal(t, models.RoleAdmin, users.byEmail["boss@example.com"].Role)
}

func TestBootstrapSkipsWhenAdminExists(t *testing.T) {
	users := &fakeUsers{byEmail: map[string]*models.User{
		"root@example.com": {ID: "u-0", Email: "root@example.com", Role: models.RoleAdmin},
	}}
	require.NoError(t, BootstrapFirstAdmin(context.Background(), "boss@example.com", users))
	assert.NotContains(t, users.byEmail, "boss@example.com")

	require.NoError(t, BootstrapFirstAdmin(context.Background(), "", users))
}
