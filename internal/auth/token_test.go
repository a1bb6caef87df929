package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var (
		tokens *JWTTokenGenerator
		now    time.Time
	)

	ginkgo.BeforeEach(func() {
		now = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
		tokens = NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour).
			WithClock(func() time.Time { return now })
	})

	ginkgo.It("signs tokens with distinct secrets and types", func() {
		pair, err := tokens.GenerateTokenPair(context.Background(), "user-1", "a@x.com")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		access, err := tokens.ValidateAccessToken(pair.AccessToken)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(access.UserID()).To(gomega.Equal("user-1"))
		gomega.Expect(access.Type).To(gomega.Equal(TokenTypeAccess))
		gomega.Expect(access.ExpiresAt.Time).To(gomega.BeTemporally("==", now.Add(15*time.Minute)))

		refresh, err := tokens.ValidateRefreshToken(pair.RefreshToken)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(refresh.Type).To(gomega.Equal(TokenTypeRefresh))
		gomega.Expect(refresh.ExpiresAt.Time).To(gomega.BeTemporally("==", now.Add(7*24*time.Hour)))

		// each token only verifies under its own secret
		_, err = tokens.ValidateAccessToken(pair.RefreshToken)
		gomega.Expect(err).To(gomega.HaveOccurred())
		_, err = tokens.ValidateRefreshToken(pair.AccessToken)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("rejects a token of the wrong type signed with the right secret", func() {
		shared := NewJWTTokenGenerator("same", "same", time.Minute, time.Hour)
		pair, err := shared.GenerateTokenPair(context.Background(), "user-1", "a@x.com")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = shared.ValidateAccessToken(pair.RefreshToken)
		gomega.Expect(err).To(gomega.MatchError(ErrWrongType))
	})

	ginkgo.It("reports expiry", func() {
		token, err := tokens.GenerateAccessToken("user-1", "a@x.com")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		later := tokens.WithClock(func() time.Time { return now.Add(16 * time.Minute) })
		_, err = later.ValidateAccessToken(token)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
	})

	ginkgo.It("rejects other signing methods", func() {
		claims := &Claims{Type: TokenTypeAccess, RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		}}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = tokens.ValidateAccessToken(unsigned)
		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})

	ginkgo.It("rejects a token without a subject", func() {
		claims := &Claims{Type: TokenTypeAccess, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		}}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = tokens.ValidateAccessToken(signed)
		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})
})
