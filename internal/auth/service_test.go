package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock repository for testing
type mockUserRepository struct {
	credentials   map[string]*Credentials
	usersByID     map[int64]*User
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)
	hash := string(hashedPassword)

	return &mockUserRepository{
		credentials: map[string]*Credentials{
			"employee@example.com": {UserID: 1, Email: "employee@example.com", PasswordHash: hash, IsActive: true},
			"admin@example.com":    {UserID: 2, Email: "admin@example.com", PasswordHash: hash, IsActive: true},
			"hr@example.com":       {UserID: 3, Email: "hr@example.com", PasswordHash: hash, IsActive: true},
			"former@example.com":   {UserID: 4, Email: "former@example.com", PasswordHash: hash, IsActive: false},
		},
		usersByID: map[int64]*User{
			1: {ID: 1, Email: "employee@example.com", IsActive: true},
			2: {ID: 2, Email: "admin@example.com", IsActive: true},
			3: {ID: 3, Email: "hr@example.com", IsActive: true},
			4: {ID: 4, Email: "former@example.com", IsActive: false},
		},
	}
}

func (m *mockUserRepository) GetCredentials(_ context.Context, email string) (*Credentials, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if c, ok := m.credentials[email]; ok {
		return c, nil
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) GetUserByID(_ context.Context, userID int64) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if u, ok := m.usersByID[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

type mockPermissionLoader struct {
	roles map[int64][]string
	keys  map[int64][]string
	err   error
}

func (m *mockPermissionLoader) PermissionsForUser(_ context.Context, userID int64) ([]string, []string, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.roles[userID], m.keys[userID], nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		ctx           context.Context
		service       *Service
		mockRepo      *mockUserRepository
		perms         *mockPermissionLoader
		tokenGen      *JWTTokenGenerator
		accessSecret  = "test-access-secret-0123456789abcdef"
		refreshSecret = "test-refresh-secret-0123456789abcdef"
		accessTTL     = 15 * time.Minute
		refreshTTL    = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		mockRepo = newMockUserRepository()
		perms = &mockPermissionLoader{
			roles: map[int64][]string{1: {"employee"}, 2: {"admin"}, 3: {"hr_manager"}},
			keys: map[int64][]string{
				1: {"dashboard.view"},
				3: {"employees.view", "employees.edit", "work_permits.register.view"},
			},
		}
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
		service = NewService(mockRepo, perms, tokenGen, bcrypt.MinCost)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return distinct access and refresh tokens", func() {
				// When
				tokens, err := service.Authenticate(ctx, LoginDTO{Email: "employee@example.com", Password: "correct_password"})

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.Equal(tokens.RefreshToken))
				gomega.Expect(tokens.TokenType).To(gomega.Equal("Bearer"))
			})

			ginkgo.It("should embed the user in the access token", func() {
				// When
				tokens, err := service.Authenticate(ctx, LoginDTO{Email: "admin@example.com", Password: "correct_password"})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// Then
				claims, err := service.ValidateAccessToken(tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal("2"))
				gomega.Expect(claims.Email).To(gomega.Equal("admin@example.com"))
				gomega.Expect(claims.TokenType).To(gomega.Equal(TokenTypeAccess))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should reject an unknown email", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Email: "nobody@example.com", Password: "x"})
				gomega.Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(gomega.BeTrue())
			})

			ginkgo.It("should reject a wrong password", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Email: "employee@example.com", Password: "wrong"})
				gomega.Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(gomega.BeTrue())
			})

			ginkgo.It("should reject an inactive account", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Email: "former@example.com", Password: "correct_password"})
				gomega.Expect(errors.Is(err, internal.ErrUserInactive)).To(gomega.BeTrue())
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should report missing and malformed fields", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Email: "not-an-email"})

				appErr, ok := internal.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeValidation))
				gomega.Expect(appErr.GetDetailedMessage()).To(gomega.ContainSubstring("email must be a valid email"))
				gomega.Expect(appErr.GetDetailedMessage()).To(gomega.ContainSubstring("password is required"))
			})
		})

		ginkgo.Context("when repository returns error", func() {
			ginkgo.It("should return an internal error", func() {
				// Given
				mockRepo.setError(errors.New("database error"))

				// When
				_, err := service.Authenticate(ctx, LoginDTO{Email: "employee@example.com", Password: "correct_password"})

				// Then
				appErr, ok := internal.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeInternal))
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		var validRefreshToken string

		ginkgo.BeforeEach(func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Email: "employee@example.com", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			validRefreshToken = tokens.RefreshToken
		})

		ginkgo.It("should issue tokens for the same user", func() {
			newTokens, err := service.RefreshTokens(ctx, validRefreshToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := service.ValidateAccessToken(newTokens.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("1"))
			gomega.Expect(claims.Email).To(gomega.Equal("employee@example.com"))
		})

		ginkgo.It("should not accept an access token as a refresh token", func() {
			tokens, _ := service.Authenticate(ctx, LoginDTO{Email: "employee@example.com", Password: "correct_password"})
			_, err := service.RefreshTokens(ctx, tokens.AccessToken)
			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject an expired refresh token", func() {
			expiredGen := NewJWTTokenGenerator(accessSecret, refreshSecret, -1*time.Hour, -1*time.Hour)
			expired, err := expiredGen.GenerateRefreshToken("1", "employee@example.com")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.RefreshTokens(ctx, expired)
			gomega.Expect(errors.Is(err, internal.ErrTokenExpired)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject a user deactivated after login", func() {
			mockRepo.usersByID[1].IsActive = false
			_, err := service.RefreshTokens(ctx, validRefreshToken)
			gomega.Expect(errors.Is(err, internal.ErrUserInactive)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		ginkgo.It("should reject malformed and empty tokens", func() {
			_, err := service.ValidateAccessToken("invalid.token")
			gomega.Expect(err).To(gomega.HaveOccurred())
			_, err = service.ValidateAccessToken("")
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should reject a refresh token", func() {
			refresh, _ := tokenGen.GenerateRefreshToken("1", "employee@example.com")
			_, err := service.ValidateAccessToken(refresh)
			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})

		ginkgo.It("should report expiry", func() {
			expiredGen := NewJWTTokenGenerator(accessSecret, refreshSecret, -1*time.Hour, refreshTTL)
			expired, _ := expiredGen.GenerateAccessToken("1", "employee@example.com")
			_, err := service.ValidateAccessToken(expired)
			gomega.Expect(errors.Is(err, internal.ErrTokenExpired)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("GetUserWithPermissions", func() {
		ginkgo.It("should attach roles and permission keys", func() {
			user, err := service.GetUserWithPermissions(ctx, 3)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(user.Roles).To(gomega.ConsistOf("hr_manager"))
			gomega.Expect(user.Can("employees.directory.list", "view")).To(gomega.BeTrue())
			gomega.Expect(user.Can("employees.directory.list", "delete")).To(gomega.BeFalse())
			gomega.Expect(user.Can("work_permits.register", "view")).To(gomega.BeTrue())
			gomega.Expect(user.Can("work_permits", "view")).To(gomega.BeFalse())
		})

		ginkgo.It("should treat admins as holding everything", func() {
			user, err := service.GetUserWithPermissions(ctx, 2)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(user.IsAdmin()).To(gomega.BeTrue())
			gomega.Expect(user.Can("admin.security.roles", "delete")).To(gomega.BeTrue())
		})

		ginkgo.It("should fail for unknown users", func() {
			user, err := service.GetUserWithPermissions(ctx, 999)
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(user).To(gomega.BeNil())
		})

		ginkgo.It("should surface permission loading failures", func() {
			perms.err = errors.New("db down")
			_, err := service.GetUserWithPermissions(ctx, 1)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeInternal))
		})
	})
})

var _ = ginkgo.Describe("LoginThrottle", func() {
	ginkgo.It("should limit attempts per email regardless of case", func() {
		t := NewLoginThrottle(2)
		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		t.now = func() time.Time { return now }

		gomega.Expect(t.Allow("A@example.com")).To(gomega.BeTrue())
		gomega.Expect(t.Allow("a@example.com")).To(gomega.BeTrue())
		gomega.Expect(t.Allow("a@example.com")).To(gomega.BeFalse())
		gomega.Expect(t.Allow("b@example.com")).To(gomega.BeTrue())

		now = now.Add(30 * time.Second)
		gomega.Expect(t.Allow("a@example.com")).To(gomega.BeTrue())
	})

	ginkgo.It("should allow everything when disabled", func() {
		t := NewLoginThrottle(0)
		for i := 0; i < 100; i++ {
			gomega.Expect(t.Allow("a@example.com")).To(gomega.BeTrue())
		}
	})
})
