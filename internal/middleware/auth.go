package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Claims son los claims del token de sesión. Usuario se propaga a la
// auditoría de cada operación.
type Claims struct {
	Usuario string `json:"usuario"`
	Rol     string `json:"rol"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifica el token Bearer y deja usuario y rol en el contexto
func AuthMiddleware(secret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Token de autorización requerido",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Formato de autorización inválido",
			})
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger.Warn("Token inválido", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Token inválido o expirado",
			})
			c.Abort()
			return
		}

		c.Set("usuario", claims.Usuario)
		c.Set("rol", claims.Rol)
		c.Next()
	}
}

// RequireAdmin exige rol admin; aprobar, rechazar y cambiar ajustes son
// acciones de administrador
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("rol") != "admin" {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Se requiere rol de administrador",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// UsuarioActual obtiene el usuario autenticado del contexto
func UsuarioActual(c *gin.Context) string {
	return c.GetString("usuario")
}
