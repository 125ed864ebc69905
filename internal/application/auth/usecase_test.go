package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/despachos-api/internal/application/auth"
	"github.com/jhoicas/despachos-api/internal/application/dto"
	"github.com/jhoicas/despachos-api/internal/domain"
	"github.com/jhoicas/despachos-api/internal/domain/entity"
)

type fakeUserRepo struct {
	byEmail map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(u *entity.User) error {
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*entity.User, error) {
	return r.byEmail[email], nil
}

func newAuthUC(repo *fakeUserRepo) *auth.AuthUseCase {
	return auth.NewAuthUseCase(repo, auth.JWTConfig{
		Secret:     "secret-de-test",
		ExpMinutes: 60,
		Issuer:     "despachos-api-test",
	})
}

func TestRegisterYLogin_FlujoCompleto(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newAuthUC(repo)

	user, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "bodeguero@acme.co", Password: "clave-segura", Name: "Pedro",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleBodeguero, user.Role, "el rol por defecto es bodeguero")

	out, err := uc.Login(dto.LoginRequest{Email: "bodeguero@acme.co", Password: "clave-segura"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, user.ID, out.User.ID)
}

func TestRegister_EmailDuplicado_RetornaConflict(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newAuthUC(repo)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "a@acme.co", Password: "clave-segura"})
	require.NoError(t, err)

	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "a@acme.co", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestLogin_PasswordIncorrecto_RetornaUnauthorized(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newAuthUC(repo)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "a@acme.co", Password: "clave-segura"})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "a@acme.co", Password: "equivocada"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInexistente_RetornaUserNotFound(t *testing.T) {
	uc := newAuthUC(newFakeUserRepo())

	_, err := uc.Login(dto.LoginRequest{Email: "nadie@acme.co", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_CuentaInactiva_RetornaForbidden(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newAuthUC(repo)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "a@acme.co", Password: "clave-segura"})
	require.NoError(t, err)
	repo.byEmail["a@acme.co"].Status = "disabled"

	_, err = uc.Login(dto.LoginRequest{Email: "a@acme.co", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
