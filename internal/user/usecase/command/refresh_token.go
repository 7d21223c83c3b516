package command

import (
	"fmt"

	"github.com/tair/storefront/internal/user/domain"
	"github.com/tair/storefront/pkg/auth"
)

// RefreshTokenCommand represents the command to exchange a refresh token
type RefreshTokenCommand struct {
	RefreshToken string
}

// RefreshTokenHandler handles token refresh
type RefreshTokenHandler struct {
	repo domain.UserRepository
}

// NewRefreshTokenHandler creates a new refresh token handler
func NewRefreshTokenHandler(repo domain.UserRepository) *RefreshTokenHandler {
	return &RefreshTokenHandler{repo: repo}
}

// Handle validates the refresh token and issues a fresh pair. The user
// is re-read so a deactivated account cannot keep refreshing forever.
func (h *RefreshTokenHandler) Handle(cmd RefreshTokenCommand) (*auth.TokenPair, error) {
	if cmd.RefreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}

	claims, err := auth.ValidateRefreshToken(cmd.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}

	user, err := h.repo.FindByID(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}

	tokens, err := auth.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return tokens, nil
}
