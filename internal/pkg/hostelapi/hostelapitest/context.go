package hostelapitest

import (
	"context"
	"net/http"

	"github.com/hostelhub/hostelhub-api/internal/pkg/jwt"
)

func withClaims(r *http.Request, claims *jwt.Claims) context.Context {
	return context.WithValue(r.Context(), claimsKey{}, claims)
}

func claimsFrom(r *http.Request) *jwt.Claims {
	claims, _ := r.Context().Value(claimsKey{}).(*jwt.Claims)
	return claims
}
