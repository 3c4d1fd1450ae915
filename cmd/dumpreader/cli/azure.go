package cli

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// defaultAzureCredential builds a credential from the ambient environment
// (managed identity, Azure CLI login, or environment variables), the same
// chain operators already use for every other Azure CLI tool.
func defaultAzureCredential() (azcore.TokenCredential, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("default azure credential: %w", err)
	}
	return cred, nil
}
