package jwt

import (
	"time"

	"github.com/eternal-silence00/Black-Needle/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// NewToken mints an HS256 token carrying the user id and username.
func NewToken(user models.User, secret string, duration time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["uid"] = user.ID.String()
	claims["username"] = user.Username
	claims["iat"] = time.Now().Unix()
	claims["exp"] = time.Now().Add(duration).Unix()

	return token.SignedString([]byte(secret))
}
