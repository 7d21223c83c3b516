package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/user/domain"
	"github.com/tair/storefront/pkg/auth"
)

type fakeUserRepo struct {
	users  map[uint]*domain.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*domain.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(user *domain.User) error {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(id uint) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) FindCustomers(limit, offset int) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == domain.RoleCustomer {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) CountCustomers() (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == domain.RoleCustomer {
			n++
		}
	}
	return n, nil
}

func TestRegisterUser(t *testing.T) {
	repo := newFakeUserRepo()
	h := NewRegisterUserHandler(repo)

	user, err := h.Handle(RegisterUserCommand{
		Name:     "Jo Doe",
		Email:    "Jo@Example.com",
		Password: "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", user.Email)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "longenough", user.Password)
	assert.True(t, auth.CheckPassword(user.Password, "longenough"))
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	h := NewRegisterUserHandler(repo)

	_, err := h.Handle(RegisterUserCommand{Name: "A", Email: "a@b.co", Password: "longenough"})
	require.NoError(t, err)

	_, err = h.Handle(RegisterUserCommand{Name: "B", Email: "a@b.co", Password: "longenough"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

// racingUserRepo simulates a concurrent signup that commits between the
// email pre-check and the insert: the lookup misses but the insert hits
// the unique index.
type racingUserRepo struct {
	*fakeUserRepo
}

func (r *racingUserRepo) FindByEmail(email string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *racingUserRepo) Create(user *domain.User) error {
	return domain.ErrEmailTaken
}

func TestRegisterUserDuplicateEmailRace(t *testing.T) {
	h := NewRegisterUserHandler(&racingUserRepo{fakeUserRepo: newFakeUserRepo()})

	_, err := h.Handle(RegisterUserCommand{Name: "B", Email: "a@b.co", Password: "longenough"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegisterUserValidation(t *testing.T) {
	h := NewRegisterUserHandler(newFakeUserRepo())

	_, err := h.Handle(RegisterUserCommand{Email: "a@b.co", Password: "longenough"})
	assert.Error(t, err, "missing name")

	_, err = h.Handle(RegisterUserCommand{Name: "A", Email: "nonsense", Password: "longenough"})
	assert.Error(t, err, "bad email")

	_, err = h.Handle(RegisterUserCommand{Name: "A", Email: "a@b.co", Password: "short"})
	assert.Error(t, err, "short password")
}

func TestLoginUser(t *testing.T) {
	repo := newFakeUserRepo()
	_, err := NewRegisterUserHandler(repo).Handle(RegisterUserCommand{
		Name: "Jo", Email: "jo@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	h := NewLoginUserHandler(repo)

	resp, err := h.Handle(LoginUserCommand{Email: "jo@example.com", Password: "longenough"})
	require.NoError(t, err)
	require.NotNil(t, resp.Tokens)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.Equal(t, "jo@example.com", resp.User.Email)

	_, err = h.Handle(LoginUserCommand{Email: "jo@example.com", Password: "wrong"})
	assert.Error(t, err)

	_, err = h.Handle(LoginUserCommand{Email: "nobody@example.com", Password: "longenough"})
	assert.Error(t, err)
}

func TestLoginDeactivatedUser(t *testing.T) {
	repo := newFakeUserRepo()
	user, err := NewRegisterUserHandler(repo).Handle(RegisterUserCommand{
		Name: "Jo", Email: "jo@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, repo.Update(user))

	_, err = NewLoginUserHandler(repo).Handle(LoginUserCommand{Email: "jo@example.com", Password: "longenough"})
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	repo := newFakeUserRepo()
	resp, err := func() (*LoginResponse, error) {
		if _, err := NewRegisterUserHandler(repo).Handle(RegisterUserCommand{
			Name: "Jo", Email: "jo@example.com", Password: "longenough",
		}); err != nil {
			return nil, err
		}
		return NewLoginUserHandler(repo).Handle(LoginUserCommand{Email: "jo@example.com", Password: "longenough"})
	}()
	require.NoError(t, err)

	h := NewRefreshTokenHandler(repo)

	pair, err := h.Handle(RefreshTokenCommand{RefreshToken: resp.Tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	// Access tokens must not be accepted on the refresh endpoint
	_, err = h.Handle(RefreshTokenCommand{RefreshToken: resp.Tokens.AccessToken})
	assert.Error(t, err)
}

type fakeAddressRepo struct {
	addresses map[uint]*domain.Address
	nextID    uint
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{addresses: map[uint]*domain.Address{}, nextID: 1}
}

func (r *fakeAddressRepo) Create(address *domain.Address) error {
	address.ID = r.nextID
	r.nextID++
	r.addresses[address.ID] = address
	return nil
}

func (r *fakeAddressRepo) FindByID(id uint) (*domain.Address, error) {
	if a, ok := r.addresses[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAddressNotFound
}

func (r *fakeAddressRepo) FindByUser(userID uint) ([]domain.Address, error) {
	var out []domain.Address
	for _, a := range r.addresses {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAddressRepo) MakeDefault(userID, addressID uint) error {
	if _, ok := r.addresses[addressID]; !ok {
		return domain.ErrAddressNotFound
	}
	for _, a := range r.addresses {
		if a.UserID == userID {
			a.IsDefault = a.ID == addressID
		}
	}
	return nil
}

func TestAddAddressDefaultIsUnique(t *testing.T) {
	repo := newFakeAddressRepo()
	h := NewAddAddressHandler(repo)

	first, err := h.Handle(AddAddressCommand{
		UserID: 1, Line1: "1 Main St", City: "Springfield", State: "IL",
		ZipCode: "62701", Country: "US", IsDefault: true,
	})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := h.Handle(AddAddressCommand{
		UserID: 1, Line1: "2 Oak Ave", City: "Springfield", State: "IL",
		ZipCode: "62702", Country: "US", IsDefault: true,
	})
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	all, err := repo.FindByUser(1)
	require.NoError(t, err)
	defaults := 0
	for _, a := range all {
		if a.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults, "at most one default address per user")
}

func TestAddAddressValidation(t *testing.T) {
	h := NewAddAddressHandler(newFakeAddressRepo())

	_, err := h.Handle(AddAddressCommand{UserID: 1, Line1: "1 Main St"})
	assert.Error(t, err)
}
