package hostspec

// BuildCallArgv assembles the argv for an `ssh` invocation, matching
// parallax.py's _build_call_cmd: fixed NumberOfPasswordPrompts/SendEnv
// options first, then caller-supplied -o options, then -l/-p, then extra
// trailing argv, then the remote command line.
func BuildCallArgv(h Host, cmdline string, sshOptions, sshExtra []string) []string {
	argv := []string{"ssh", h.Host,
		"-o", "NumberOfPasswordPrompts=1",
		"-o", "SendEnv=PARALLAX_NODENUM PARALLAX_HOST",
	}
	for _, opt := range sshOptions {
		argv = append(argv, "-o", opt)
	}
	if h.User != "" {
		argv = append(argv, "-l", h.User)
	}
	if h.Port != "" {
		argv = append(argv, "-p", h.Port)
	}
	argv = append(argv, sshExtra...)
	if cmdline != "" {
		argv = append(argv, cmdline)
	}
	return argv
}

// BuildCopyArgv assembles the argv for an upload `scp`, matching
// parallax.py's _build_copy_cmd.
func BuildCopyArgv(h Host, src, dst string, recursive bool, sshOptions, sshExtra []string) []string {
	argv := []string{"scp", "-qC"}
	for _, opt := range sshOptions {
		argv = append(argv, "-o", opt)
	}
	if h.Port != "" {
		argv = append(argv, "-P", h.Port)
	}
	if recursive {
		argv = append(argv, "-r")
	}
	argv = append(argv, sshExtra...)
	argv = append(argv, src, remoteDest(h, dst))
	return argv
}

// BuildSlurpArgv assembles the argv for a download `scp`, matching
// parallax.py's _build_slurp_cmd.
func BuildSlurpArgv(h Host, src, localPath string, recursive bool, sshOptions, sshExtra []string) []string {
	argv := []string{"scp", "-qC"}
	for _, opt := range sshOptions {
		argv = append(argv, "-o", opt)
	}
	if h.Port != "" {
		argv = append(argv, "-P", h.Port)
	}
	if recursive {
		argv = append(argv, "-r")
	}
	argv = append(argv, sshExtra...)
	argv = append(argv, remoteDest(h, src), localPath)
	return argv
}

func remoteDest(h Host, path string) string {
	if h.User != "" {
		return h.User + "@" + h.Host + ":" + path
	}
	return h.Host + ":" + path
}
