package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Himess/delreg/internal/cliconfig"
	"github.com/Himess/delreg/pkg/client"
)

// requestingIdentity is the identity commands act as; sent to the
// server in the X-Requesting-Identity header.
var requestingIdentity string

func getClient() (*client.Client, error) {
	// we need the user to provide some server address first
	server := viper.GetString(ServerAddrKey)
	if server == "" {
		return nil, fmt.Errorf("server address not configured, provide via --server or env")
	}

	cfg, err := cliconfig.Load()
	if err != nil {
		return nil, err
	}

	var authToken string

	credential, err := cfg.GetCredential(server)
	if err != nil {
		if !errors.Is(err, cliconfig.ErrCredentialNotFound) {
			return nil, err
		}
	} else {
		authToken = credential.Token
	}

	if envToken := os.Getenv("DELREG_TOKEN"); envToken != "" {
		authToken = envToken
	}

	return client.New(server,
		client.WithAuthToken(authToken),
		client.WithRequestingIdentity(requestingIdentity),
	), nil
}

func bindIdentityFlag(flags *pflag.FlagSet) {
	flags.StringVar(&requestingIdentity, "as", "", "Identity to act as (owner of the delegation)")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
