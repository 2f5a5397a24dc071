package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Hashith00/tlschat/internal/common"
	"github.com/Hashith00/tlschat/internal/dbx"
	"github.com/Hashith00/tlschat/internal/server/config"
	"github.com/Hashith00/tlschat/internal/server/models"
	refreshtokensrepo "github.com/Hashith00/tlschat/internal/server/repositories/refreshtokens"
	usersrepo "github.com/Hashith00/tlschat/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newUserService(t *testing.T, rm *fakeRepoManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  15 * time.Minute,
		RefreshTokenValidityDuration: 7 * 24 * time.Hour,
	}
	return NewUserService(newSQLMockDB(t), rm, cfg)
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byCredsOut *models.User
	byCredsErr error

	byTokenOut *models.User
	byTokenErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetByEmailAndPassword(ctx context.Context, email, passwordHash string) (*models.User, error) {
	if f.byCredsErr != nil {
		return nil, f.byCredsErr
	}
	return f.byCredsOut, nil
}

func (f *fakeUsersRepo) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	if f.byTokenErr != nil {
		return nil, f.byTokenErr
	}
	return f.byTokenOut, nil
}

type fakeRefreshRepo struct {
	savedUserID   int64
	savedToken    string
	savedValidity time.Duration
	saveCalls     int
	saveErr       error

	findOut *models.RefreshToken
	findErr error

	deleted []string
}

func (f *fakeRefreshRepo) Save(ctx context.Context, userID int64, token string, validity time.Duration) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saveCalls++
	f.savedUserID = userID
	f.savedToken = token
	f.savedValidity = validity
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	return nil
}

type fakeRepoManager struct {
	users   *fakeUsersRepo
	refresh *fakeRefreshRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.users }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.refresh
}
func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

// --- tests ---

func TestLogin_Success_MintsAndPersistsPair(t *testing.T) {
	user := &models.User{ID: 7, Name: "Alice", Email: "alice@example.com"}
	rm := &fakeRepoManager{
		users:   &fakeUsersRepo{byCredsOut: user},
		refresh: &fakeRefreshRepo{},
	}
	s := newUserService(t, rm)

	got, pair, err := s.Login(context.Background(), "alice@example.com", "digest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 7 {
		t.Fatalf("unexpected user: %+v", got)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected non-empty token pair, got %+v", pair)
	}
	if !s.ValidateAccess(pair.AccessToken) {
		t.Fatalf("freshly minted access token must validate")
	}

	if rm.refresh.saveCalls != 1 {
		t.Fatalf("expected exactly one refresh save, got %d", rm.refresh.saveCalls)
	}
	if rm.refresh.savedUserID != 7 || rm.refresh.savedToken != pair.RefreshToken {
		t.Fatalf("persisted refresh token mismatch: %+v", rm.refresh)
	}
	if rm.refresh.savedValidity != 7*24*time.Hour {
		t.Fatalf("unexpected refresh validity: %v", rm.refresh.savedValidity)
	}
}

func TestLogin_UnknownCredentials(t *testing.T) {
	rm := &fakeRepoManager{
		users:   &fakeUsersRepo{byCredsErr: common.ErrorNotFound},
		refresh: &fakeRefreshRepo{},
	}
	s := newUserService(t, rm)

	_, _, err := s.Login(context.Background(), "nobody@example.com", "digest")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
	if rm.refresh.saveCalls != 0 {
		t.Fatalf("no refresh token must be persisted on rejection")
	}
}

func TestLogin_RepositoryFailure(t *testing.T) {
	rm := &fakeRepoManager{
		users:   &fakeUsersRepo{byCredsErr: errors.New("db down")},
		refresh: &fakeRefreshRepo{},
	}
	s := newUserService(t, rm)

	_, _, err := s.Login(context.Background(), "alice@example.com", "digest")
	if !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("expected ErrorInternal, got %v", err)
	}
}

func TestValidateAccess_ExpiredToken(t *testing.T) {
	user := &models.User{ID: 1, Name: "A", Email: "a@example.com"}
	rm := &fakeRepoManager{
		users:   &fakeUsersRepo{byCredsOut: user},
		refresh: &fakeRefreshRepo{},
	}
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  -1 * time.Second, // already expired at mint time
		RefreshTokenValidityDuration: time.Hour,
	}
	s := NewUserService(newSQLMockDB(t), rm, cfg)

	_, pair, err := s.Login(context.Background(), "a@example.com", "digest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ValidateAccess(pair.AccessToken) {
		t.Fatalf("expired access token must not validate")
	}
}

func TestValidateRefresh(t *testing.T) {
	tests := []struct {
		name string
		repo *fakeRefreshRepo
		want bool
	}{
		{
			name: "valid",
			repo: &fakeRefreshRepo{findOut: &models.RefreshToken{UserID: 1, Expires: time.Now().Add(time.Hour)}},
			want: true,
		},
		{
			name: "expired",
			repo: &fakeRefreshRepo{findOut: &models.RefreshToken{UserID: 1, Expires: time.Now().Add(-time.Minute)}},
			want: false,
		},
		{
			name: "unknown",
			repo: &fakeRefreshRepo{findErr: common.ErrorNotFound},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := &fakeRepoManager{users: &fakeUsersRepo{}, refresh: tt.repo}
			s := newUserService(t, rm)
			if got := s.ValidateRefresh(context.Background(), "tok"); got != tt.want {
				t.Fatalf("ValidateRefresh = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRefreshAccess_UnknownToken(t *testing.T) {
	rm := &fakeRepoManager{
		users:   &fakeUsersRepo{byTokenErr: common.ErrorNotFound},
		refresh: &fakeRefreshRepo{},
	}
	s := newUserService(t, rm)

	_, err := s.RefreshAccess(context.Background(), "never-issued")
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshAccess_Success_NoRotation(t *testing.T) {
	user := &models.User{ID: 3, Name: "Bob", Email: "bob@example.com"}
	rm := &fakeRepoManager{
		users:   &fakeUsersRepo{byTokenOut: user},
		refresh: &fakeRefreshRepo{},
	}
	s := newUserService(t, rm)

	access, err := s.RefreshAccess(context.Background(), "refresh-tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.ValidateAccess(access) {
		t.Fatalf("renewed access token must validate")
	}

	// The refresh token is reissued-from, never rotated: no writes happen.
	if rm.refresh.saveCalls != 0 || len(rm.refresh.deleted) != 0 {
		t.Fatalf("refresh token must remain untouched, got %+v", rm.refresh)
	}

	// And it stays usable for a subsequent refresh.
	if _, err := s.RefreshAccess(context.Background(), "refresh-tok"); err != nil {
		t.Fatalf("second refresh must succeed: %v", err)
	}
}

func TestRegister_CreatesUser(t *testing.T) {
	out := &models.User{ID: 9, Name: "Carol", Email: "carol@example.com"}
	rm := &fakeRepoManager{
		users:   &fakeUsersRepo{createOut: out},
		refresh: &fakeRefreshRepo{},
	}
	s := newUserService(t, rm)

	u, err := s.Register(context.Background(), "Carol", "carol@example.com", "digest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 9 {
		t.Fatalf("unexpected user: %+v", u)
	}
}
