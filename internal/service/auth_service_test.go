package service_test

import (
	"context"
	"strings"
	"testing"

	"cocinaclinica/internal/config"
	"cocinaclinica/internal/dto"
	"cocinaclinica/internal/model"
	"cocinaclinica/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	copia := *u
	r.usuarios[u.ID] = &copia
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if !u.Activo {
			continue
		}
		if u.Username == username {
			copia := *u
			return &copia, nil
		}
		if u.Email != nil && strings.EqualFold(*u.Email, username) {
			copia := *u
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *u
	return &copia, nil
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var result []model.Usuario
	for _, u := range r.usuarios {
		if u.Activo {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (r *stubUsuarioRepo) ListAll(_ context.Context) ([]model.Usuario, error) {
	var result []model.Usuario
	for _, u := range r.usuarios {
		result = append(result, *u)
	}
	return result, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	copia := *u
	r.usuarios[u.ID] = &copia
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = false
	return nil
}

func (r *stubUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	u, ok := r.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = true
	return nil
}

func nuevoServicioAuth() (*stubUsuarioRepo, service.AuthService) {
	repo := newStubUsuarioRepo()
	cfg := &config.Config{
		JWTSecret:          "secreto-de-prueba",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	}
	return repo, service.NewAuthService(repo, cfg)
}

func semillaUsuario(repo *stubUsuarioRepo, username, password, rol string) uuid.UUID {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	id := uuid.New()
	repo.usuarios[id] = &model.Usuario{
		ID: id, Username: username, Nombre: "Usuario " + username,
		PasswordHash: string(hash), Rol: rol, Activo: true,
	}
	return id
}

func TestLogin(t *testing.T) {
	repo, svc := nuevoServicioAuth()
	semillaUsuario(repo, "chef", "cocina2026", "cocinero")

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "chef", Password: "cocina2026"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "cocinero", resp.User.Rol)
}

func TestLoginCredencialesInvalidas(t *testing.T) {
	repo, svc := nuevoServicioAuth()
	id := semillaUsuario(repo, "chef", "cocina2026", "cocinero")

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "chef", Password: "incorrecta"})
	assert.Error(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "nadie", Password: "cocina2026"})
	assert.Error(t, err)

	// Un usuario desactivado no puede entrar
	repo.usuarios[id].Activo = false
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "chef", Password: "cocina2026"})
	assert.Error(t, err)
}

func TestRefresh(t *testing.T) {
	repo, svc := nuevoServicioAuth()
	id := semillaUsuario(repo, "chef", "cocina2026", "supervisor")

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "chef", Password: "cocina2026"})
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "chef", resp.User.Username)

	_, err = svc.Refresh(context.Background(), "no-es-un-token")
	assert.Error(t, err)

	// El refresh de un usuario desactivado se rechaza
	repo.usuarios[id].Activo = false
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.Error(t, err)
}

func TestCrearUsuario(t *testing.T) {
	repo, svc := nuevoServicioAuth()
	unidad := "UCI pediátrica"

	resp, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "nutricion1", Nombre: "Ana Gómez", Password: "clave-segura",
		Rol: "supervisor", UnidadMedica: &unidad,
	})
	require.NoError(t, err)
	assert.True(t, resp.Activo)
	require.NotNil(t, resp.UnidadMedica)
	assert.Equal(t, unidad, *resp.UnidadMedica)

	// La contraseña nunca se guarda en claro
	guardado := repo.usuarios[uuid.MustParse(resp.ID)]
	assert.NotEqual(t, "clave-segura", guardado.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(guardado.PasswordHash), []byte("clave-segura")))
}

func TestListarUsuarios(t *testing.T) {
	repo, svc := nuevoServicioAuth()
	semillaUsuario(repo, "activo1", "x12345", "cocinero")
	id := semillaUsuario(repo, "retirado", "x12345", "cocinero")
	repo.usuarios[id].Activo = false

	activos, err := svc.ListarUsuarios(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, activos, 1)

	todos, err := svc.ListarUsuarios(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}

func TestDesactivarYReactivarUsuario(t *testing.T) {
	repo, svc := nuevoServicioAuth()
	id := semillaUsuario(repo, "chef", "cocina2026", "cocinero")

	require.NoError(t, svc.DesactivarUsuario(context.Background(), id))
	assert.False(t, repo.usuarios[id].Activo)

	require.NoError(t, svc.ReactivarUsuario(context.Background(), id))
	assert.True(t, repo.usuarios[id].Activo)
}

func TestActualizarUsuarioCambiaPassword(t *testing.T) {
	repo, svc := nuevoServicioAuth()
	id := semillaUsuario(repo, "chef", "vieja-clave", "cocinero")

	_, err := svc.ActualizarUsuario(context.Background(), id, dto.ActualizarUsuarioRequest{
		Password: "nueva-clave", Rol: "supervisor",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "chef", Password: "vieja-clave"})
	assert.Error(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "chef", Password: "nueva-clave"})
	require.NoError(t, err)
	assert.Equal(t, "supervisor", resp.User.Rol)
}
