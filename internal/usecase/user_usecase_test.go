package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserUsecase_UpdateProfile(t *testing.T) {
	s := newMemStore()
	user := s.addUser(model.User{Email: "alice@example.com", Name: "Alice"})
	uc := usecase.NewUserUsecase(&memUsers{s})
	ctx := context.Background()

	out, err := uc.UpdateProfile(ctx, customer(user.ID), usecase.UpdateProfileInput{Name: " Alice Smith ", Phone: "555-0100"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", out.Name)
	assert.Equal(t, "555-0100", out.Phone)
	assert.Equal(t, "alice@example.com", out.Email)

	_, err = uc.UpdateProfile(ctx, customer(user.ID), usecase.UpdateProfileInput{Name: "  "})
	assert.Equal(t, usecase.KindInvalidInput, kindOf(err))

	_, err = uc.GetProfile(ctx, customer(99999))
	assert.Equal(t, usecase.KindNotFound, kindOf(err))
}

func TestAddressUsecase(t *testing.T) {
	s := newMemStore()
	alice := s.addUser(model.User{Email: "alice@example.com"})
	bob := s.addUser(model.User{Email: "bob@example.com"})
	uc := usecase.NewAddressUsecase(&memAddresses{s})
	ctx := context.Background()
	p := customer(alice.ID)

	in := usecase.AddressCreateInput{Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US"}

	home, err := uc.Create(ctx, p, in)
	require.NoError(t, err)
	assert.False(t, home.IsDefault)

	in.Street = "9 Office Rd"
	in.IsDefault = true
	office, err := uc.Create(ctx, p, in)
	require.NoError(t, err)
	assert.True(t, office.IsDefault)

	// デフォルトが先頭
	list, err := uc.List(ctx, p)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, office.ID, list[0].ID)

	in.City = ""
	_, err = uc.Create(ctx, p, in)
	assert.Equal(t, usecase.KindInvalidInput, kindOf(err))

	err = uc.Delete(ctx, customer(bob.ID), home.ID)
	assert.Equal(t, usecase.KindForbidden, kindOf(err))

	require.NoError(t, uc.Delete(ctx, p, home.ID))
	err = uc.Delete(ctx, p, home.ID)
	assert.Equal(t, usecase.KindNotFound, kindOf(err))
}
