package cmd

import (
	"github.com/kgronlund/parallax/internal/vault"
)

func vaultGet(alias string) (string, error) {
	return vault.Get(alias)
}

func vaultPrompt(alias string) (string, error) {
	return vault.PromptPassword(alias)
}
