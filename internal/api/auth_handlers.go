package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"github.com/littbk/rpg-battle/internal/config"
	"github.com/littbk/rpg-battle/internal/constants"
	"github.com/littbk/rpg-battle/internal/logging"
)

// AuthHandler relays a platform OAuth authorization code to the token
// endpoint and returns the access token to the client.
type AuthHandler struct {
	conf *oauth2.Config
}

// NewAuthHandler builds the relay against the Discord endpoints. A zero
// DiscordOAuth leaves the relay disabled.
func NewAuthHandler(d config.DiscordOAuth) *AuthHandler {
	return NewAuthHandlerWithEndpoint(d, oauth2.Endpoint{
		AuthURL:   constants.DiscordAuthURL,
		TokenURL:  constants.DiscordTokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	})
}

// NewAuthHandlerWithEndpoint is NewAuthHandler with an explicit endpoint.
func NewAuthHandlerWithEndpoint(d config.DiscordOAuth, endpoint oauth2.Endpoint) *AuthHandler {
	if !d.Enabled() {
		return &AuthHandler{}
	}
	return &AuthHandler{conf: &oauth2.Config{
		ClientID:     d.ClientID,
		ClientSecret: d.ClientSecret,
		RedirectURL:  d.RedirectURL,
		Endpoint:     endpoint,
	}}
}

type TokenRequest struct {
	Code string `json:"code"`
}

// ExchangeToken trades the authorization code for an access token.
func (h *AuthHandler) ExchangeToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrCodeRequired})
		return
	}
	if h.conf == nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrMissingDiscordEnv})
		return
	}
	if h.conf.RedirectURL == "" {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrMissingClientURL})
		return
	}

	token, err := h.conf.Exchange(c.Request.Context(), req.Code)
	if err != nil {
		logging.Warn("token exchange failed", err, nil)
		status := http.StatusBadGateway
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			status = re.Response.StatusCode
		}
		c.JSON(status, gin.H{constants.JSONKeyError: constants.ErrFailedExchangeToken, constants.JSONKeyDetails: err.Error()})
		return
	}
	logging.Info("access token issued", nil)
	c.JSON(http.StatusOK, gin.H{"access_token": token.AccessToken})
}
