package user

import (
	"context"

	"github.com/trezcool/shule/core"
)

type (
	Repository interface {
		// CreateUser relies on the store's unique email index to reject a
		// duplicate with ErrEmailExists; there is no pre-check.
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryUsers(ctx context.Context, ordering []core.DBOrdering) ([]User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		// QueryUsersByEmail returns the (possibly empty) list of users matching the email.
		QueryUsersByEmail(ctx context.Context, email string) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...int) (int, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, nu NewUser) (User, error)
		Query(ctx context.Context, ordering []core.DBOrdering) ([]User, error)
		GetByEmail(ctx context.Context, email string) ([]User, error)
		Update(ctx context.Context, id int, uu UpdateUser) (User, error)
		Delete(ctx context.Context, ids ...int) (int, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Name:  core.CleanString(nu.Name),
		Age:   nu.Age,
		Email: core.CleanString(nu.Email, true /* lower */),
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) Query(ctx context.Context, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, ordering)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) ([]User, error) {
	return svc.repo.QueryUsersByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, id int, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if uu.Name != "" {
		usr.Name = core.CleanString(uu.Name)
	}
	if uu.Age != 0 {
		usr.Age = uu.Age
	}
	if uu.Email != "" {
		usr.Email = core.CleanString(uu.Email, true /* lower */)
	}
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) (int, error) {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}
