package vault

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"
)

// PromptPassword prompts the user to enter a password securely (no echo).
func PromptPassword(alias string) (string, error) {
	fmt.Fprintf(os.Stderr, "Enter password for %q: ", alias)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("vault: read password: %w", err)
	}
	return string(passwordBytes), nil
}

// PromptAndConfirmPassword prompts for a password twice and requires both
// entries to match.
func PromptAndConfirmPassword(alias string) (string, error) {
	first, err := PromptPassword(alias)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(os.Stderr, "Confirm password for %q: ", alias)
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("vault: read password confirmation: %w", err)
	}
	if first != string(second) {
		return "", fmt.Errorf("vault: passwords do not match")
	}
	return first, nil
}
