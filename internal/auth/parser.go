package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nurpe/procure-proposals/internal/model"
)

// Parser validates access tokens issued by the identity service and extracts
// the acting principal from their claims.
type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

type claims struct {
	Role   string   `json:"role"`
	OrgIDs []string `json:"org_ids"`
	jwt.RegisteredClaims
}

func (p *Parser) Parse(token string) (model.Principal, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return p.secret, nil
	})
	if err != nil {
		return model.Principal{}, fmt.Errorf("parse token: %w", err)
	}

	userID, err := uuid.Parse(parsed.Subject)
	if err != nil {
		return model.Principal{}, fmt.Errorf("invalid subject claim: %w", err)
	}
	role, ok := model.ParseRole(parsed.Role)
	if !ok {
		return model.Principal{}, fmt.Errorf("invalid role claim %q", parsed.Role)
	}

	principal := model.Principal{
		UserID: userID,
		Role:   role,
	}
	for _, raw := range parsed.OrgIDs {
		orgID, err := uuid.Parse(raw)
		if err != nil {
			return model.Principal{}, fmt.Errorf("invalid org id claim %q", raw)
		}
		principal.OrgIDs = append(principal.OrgIDs, orgID)
	}
	return principal, nil
}
