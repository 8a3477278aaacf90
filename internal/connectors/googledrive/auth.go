package googledrive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

// tokenSource builds an oauth2.TokenSource from the configured client
// secret and stored token files. There is no interactive flow here:
// both files must already exist, and the error guidance tells the
// user how to produce them. A token with a refresh token is refreshed
// transparently by the source.
func tokenSource(ctx context.Context, credentialsFile, tokenFile string) (oauth2.TokenSource, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("%w: drive.credentials_file is not configured", domain.ErrConfig)
	}
	if tokenFile == "" {
		return nil, fmt.Errorf("%w: drive.token_file is not configured", domain.ErrConfig)
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read credentials file %s; download an OAuth client secret from the Google Cloud console",
			domain.ErrAuthRequired, credentialsFile)
	}

	config, err := google.ConfigFromJSON(data, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parse credentials file %s: %v", domain.ErrConfig, credentialsFile, err)
	}

	token, err := loadToken(tokenFile)
	if err != nil {
		return nil, err
	}
	if !token.Valid() && token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token in %s has expired and cannot be refreshed; re-authorise and save a fresh token",
			domain.ErrAuthRequired, tokenFile)
	}

	return config.TokenSource(ctx, token), nil
}

// loadToken reads a stored OAuth token from disk.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read token file %s; authorise the app once and save the token there",
			domain.ErrAuthRequired, path)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: token file %s is not valid JSON", domain.ErrAuthRequired, path)
	}
	return &token, nil
}
