package askpass

import (
	"fmt"
	"io"
	"net"
	"os"
	"strings"
)

// RunHelper is the logic behind the SSH_ASKPASS executable: ssh invokes it
// with the prompt text as argv[1] when it needs a password. If the prompt
// doesn't look like a password prompt (host-key confirmation, yes/no
// questions, ...), the helper refuses by printing the prompt to its own
// stderr and returning a non-zero exit code; this is what rejects anything
// that isn't a plain password request. On a genuine password prompt it
// connects to PARALLAX_ASKPASS_SOCKET, reads the password, and prints it to
// stdout for ssh to consume.
func RunHelper(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "parallax-askpass: called without a prompt")
		return 1
	}
	prompt := args[0]
	if os.Getenv("PARALLAX_ASKPASS_VERBOSE") != "" {
		fmt.Fprintf(stderr, "parallax-askpass received prompt: %q\n", prompt)
	}
	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(prompt)), "password:") {
		fmt.Fprintln(stderr, prompt)
		return 1
	}

	address := os.Getenv("PARALLAX_ASKPASS_SOCKET")
	if address == "" {
		fmt.Fprintln(stderr, "parallax: ssh requested a password but no askpass socket was provided; "+
			"use SSH keys or enable --askpass")
		return 1
	}

	conn, err := net.Dial("unix", address)
	if err != nil {
		fmt.Fprintf(stderr, "parallax-askpass: couldn't connect to %s: %v\n", address, err)
		return 2
	}
	defer conn.Close()

	password, err := io.ReadAll(conn)
	if err != nil {
		fmt.Fprintln(stderr, "parallax-askpass: socket error reading password")
		return 3
	}

	fmt.Fprintln(stdout, string(password))
	return 0
}
