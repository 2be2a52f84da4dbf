package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type AddressCreateInput struct {
	Street    string
	City      string
	State     string
	ZipCode   string
	Country   string
	IsDefault bool
}

type AddressUsecase struct {
	addresses repo.AddressRepository
}

func NewAddressUsecase(addresses repo.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

// デフォルトが先頭
func (u *AddressUsecase) List(ctx context.Context, p model.Principal) ([]model.Address, error) {
	if !p.Authenticated() {
		return nil, errUnauthenticated()
	}

	list, err := u.addresses.ListByUserID(ctx, p.UserID)
	if err != nil {
		return nil, internalError(err)
	}
	return list, nil
}

func (u *AddressUsecase) Create(ctx context.Context, p model.Principal, in AddressCreateInput) (model.Address, error) {
	if !p.Authenticated() {
		return model.Address{}, errUnauthenticated()
	}

	a := model.Address{
		UserID:  p.UserID,
		Street:  strings.TrimSpace(in.Street),
		City:    strings.TrimSpace(in.City),
		State:   strings.TrimSpace(in.State),
		ZipCode: strings.TrimSpace(in.ZipCode),
		Country: strings.TrimSpace(in.Country),
	}

	//入力チェック
	if a.Street == "" || a.City == "" || a.State == "" || a.ZipCode == "" || a.Country == "" {
		return model.Address{}, NewError(KindInvalidInput, "street, city, state, zip_code and country are required")
	}

	created, err := u.addresses.Create(ctx, a)
	if err != nil {
		return model.Address{}, internalError(err)
	}

	//user内でdefaultは1つ
	if in.IsDefault {
		if err := u.addresses.SetDefault(ctx, p.UserID, created.ID); err != nil {
			return model.Address{}, internalError(err)
		}
		created.IsDefault = true
	}

	return created, nil
}

func (u *AddressUsecase) Delete(ctx context.Context, p model.Principal, addressID int64) error {
	if !p.Authenticated() {
		return errUnauthenticated()
	}
	if addressID <= 0 {
		return NewError(KindInvalidInput, "invalid id")
	}

	//所有チェック（本人のみ）
	a, err := u.addresses.FindByID(ctx, addressID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewError(KindNotFound, "address not found")
	}
	if err != nil {
		return internalError(err)
	}
	if a.UserID != p.UserID {
		return NewError(KindForbidden, "forbidden")
	}

	err = u.addresses.Delete(ctx, addressID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewError(KindNotFound, "address not found")
	}
	if err != nil {
		return internalError(err)
	}
	return nil
}
